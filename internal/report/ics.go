package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
)

const (
	icsDateLayout     = "20060102"
	icsDateTimeLayout = "20060102T150405Z"
)

var ErrNoOccurrence = errors.New("task has no occurrence to export")

var icsWeekdays = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// BuildICS exports a task as a single iCalendar event. Recurring tasks get a
// weekly RRULE, undated tasks a daily one. Timed tasks are written in UTC,
// others as all-day events.
func BuildICS(t *model.Task, loc *time.Location, now time.Time) (string, error) {
	s := t.Schedule()

	first, ok := firstOccurrence(s, t, schedule.DateOf(now.In(loc)))
	if !ok {
		return "", ErrNoOccurrence
	}
	last := first
	if t.EndDate != nil {
		last = *t.EndDate
	}

	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "TaskFlow Task"
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//TaskFlow//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(fmt.Sprintf("task-%s@taskflow", t.ID)),
		"DTSTAMP:" + now.UTC().Format(icsDateTimeLayout),
		"SUMMARY:" + escapeICSText(title),
	}

	timed := t.StartTime != nil || t.EndTime != nil
	repeats := s.DailyTracked()

	if timed {
		start, end := s.EffectiveWindow(first, loc)
		if !repeats {
			_, end = s.EffectiveWindow(last, loc)
		}
		lines = append(lines,
			"DTSTART:"+start.UTC().Format(icsDateTimeLayout),
			"DTEND:"+end.UTC().Format(icsDateTimeLayout),
		)
	} else {
		end := first.AddDays(1)
		if !repeats {
			end = last.AddDays(1)
		}
		lines = append(lines,
			"DTSTART;VALUE=DATE:"+first.At(0, time.UTC).Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+end.At(0, time.UTC).Format(icsDateLayout),
		)
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
	}
	if repeats {
		lines = append(lines, "RRULE:"+recurrenceRule(s, t, loc))
	}
	if !repeats && len(t.Completions) > 0 {
		lines = append(lines, "STATUS:COMPLETED")
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func firstOccurrence(s schedule.Schedule, t *model.Task, today schedule.Date) (schedule.Date, bool) {
	from := today
	switch {
	case t.StartDate != nil:
		from = *t.StartDate
	case t.EndDate != nil && !s.Recurring():
		from = *t.EndDate
	}
	if !s.Recurring() {
		return from, true
	}
	for i := 0; i < 7; i++ {
		d := from.AddDays(i)
		if t.EndDate != nil && d.After(*t.EndDate) {
			break
		}
		if s.IsScheduledOn(d) {
			return d, true
		}
	}
	return schedule.Date{}, false
}

func recurrenceRule(s schedule.Schedule, t *model.Task, loc *time.Location) string {
	var rule string
	if s.Recurring() {
		days := make([]string, len(t.RecurringDays))
		for i, d := range t.RecurringDays {
			days[i] = icsWeekdays[d]
		}
		rule = "FREQ=WEEKLY;BYDAY=" + strings.Join(days, ",")
	} else {
		rule = "FREQ=DAILY"
	}

	if t.EndDate != nil {
		if t.StartTime != nil || t.EndTime != nil {
			until, _ := s.EffectiveWindow(*t.EndDate, loc)
			rule += ";UNTIL=" + until.UTC().Format(icsDateTimeLayout)
		} else {
			rule += ";UNTIL=" + t.EndDate.At(0, time.UTC).Format(icsDateLayout)
		}
	}
	return rule
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
