package report

import (
	"errors"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
)

// MaxRangeDays bounds analytics queries.
const MaxRangeDays = 366

var ErrInvalidRange = errors.New("invalid date range")

type CalendarDay struct {
	Date   schedule.Date      `json:"date"`
	Status schedule.DayStatus `json:"status"`
}

type TaskCalendar struct {
	Year      int           `json:"year"`
	Month     time.Month    `json:"month"`
	Completed int           `json:"completed"`
	Missed    int           `json:"missed"`
	Days      []CalendarDay `json:"days"`
}

// MonthCalendar classifies every day of the month for one task. A task
// spanning a date range shows its status on every day of the range but is
// counted once, on its last day.
func MonthCalendar(t *model.Task, year int, month time.Month, now time.Time) TaskCalendar {
	s := t.Schedule()
	cal := TaskCalendar{Year: year, Month: month}
	for _, d := range schedule.MonthDays(year, month) {
		st := schedule.ComputeDayStatus(s, d, now)
		if countsOn(s, d) {
			switch st {
			case schedule.DayCompleted:
				cal.Completed++
			case schedule.DayMissed:
				cal.Missed++
			}
		}
		cal.Days = append(cal.Days, CalendarDay{Date: d, Status: st})
	}
	return cal
}

// countsOn reports whether day is where the occurrence covering it is tallied.
func countsOn(s schedule.Schedule, day schedule.Date) bool {
	return s.DailyTracked() || s.OccurrenceKey(day) == day
}

type DayCount struct {
	Date      schedule.Date `json:"date"`
	Completed int           `json:"completed"`
	Missed    int           `json:"missed"`
	Scheduled int           `json:"scheduled"`
}

// perfect days have something done and nothing missed.
func (c DayCount) perfect() bool { return c.Completed > 0 && c.Missed == 0 }

type Analytics struct {
	From           schedule.Date `json:"from"`
	To             schedule.Date `json:"to"`
	Completed      int           `json:"completed"`
	Missed         int           `json:"missed"`
	CompletionRate float64       `json:"completionRate"`
	CurrentStreak  int           `json:"currentStreak"`
	LongestStreak  int           `json:"longestStreak"`
	Days           []DayCount    `json:"days"`
}

// Analyze counts day statuses of every task in flow over [from, to]. A
// task spanning a date range is counted on its last day only.
// Streaks count consecutive perfect days; days with nothing completed and
// nothing missed neither extend nor break a streak.
func Analyze(flow *model.Flow, from, to schedule.Date, now time.Time) (Analytics, error) {
	if to.Before(from) || from.DaysUntil(to) >= MaxRangeDays {
		return Analytics{}, ErrInvalidRange
	}

	schedules := make([]schedule.Schedule, len(flow.Tasks))
	for i := range flow.Tasks {
		schedules[i] = flow.Tasks[i].Schedule()
	}

	a := Analytics{From: from, To: to}
	for d := from; !d.After(to); d = d.AddDays(1) {
		c := DayCount{Date: d}
		for _, s := range schedules {
			st := schedule.ComputeDayStatus(s, d, now)
			if (st == schedule.DayCompleted || st == schedule.DayMissed) && !countsOn(s, d) {
				continue
			}
			switch st {
			case schedule.DayCompleted:
				c.Completed++
			case schedule.DayMissed:
				c.Missed++
			case schedule.DayToday, schedule.DayScheduled:
				c.Scheduled++
			}
		}
		a.Completed += c.Completed
		a.Missed += c.Missed
		a.Days = append(a.Days, c)
	}

	if total := a.Completed + a.Missed; total > 0 {
		a.CompletionRate = float64(a.Completed) / float64(total)
	}
	a.LongestStreak, a.CurrentStreak = streaks(a.Days, schedule.DateOf(now))
	return a, nil
}

func streaks(days []DayCount, today schedule.Date) (longest, current int) {
	run := 0
	for _, c := range days {
		switch {
		case c.perfect():
			run++
			longest = max(longest, run)
		case c.Missed > 0:
			run = 0
		}
	}

	for i := len(days) - 1; i >= 0; i-- {
		c := days[i]
		if c.Date.After(today) {
			continue
		}
		if c.Missed > 0 {
			break
		}
		if c.perfect() {
			current++
		}
	}
	return longest, current
}
