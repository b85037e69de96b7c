// Package schedule derives the status of a task occurrence at a given instant.
//
// Every function here is pure: the reference instant is always passed in and
// nothing is cached between calls. List, calendar, agenda, export and
// notification code all go through this package.
package schedule

import (
	"slices"
	"time"
)

type Status string

const (
	StatusNotScheduledToday Status = "not_scheduled_today"
	StatusCompletedOnTime   Status = "completed_on_time"
	StatusCompletedLate     Status = "completed_late"
	StatusLive              Status = "live"
	StatusOverdue           Status = "overdue"
	StatusPending           Status = "pending"
)

func (s Status) Completed() bool {
	return s == StatusCompletedOnTime || s == StatusCompletedLate
}

type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayMissed    DayStatus = "missed"
	DayToday     DayStatus = "today"
	DayScheduled DayStatus = "scheduled"
	DayNone      DayStatus = "none"
)

// Schedule is the subset of a task the engine looks at.
//
// Completions maps an occurrence key to the instant it was last completed.
// Daily-tracked tasks (recurring, or without dates) key by the day of the
// occurrence; one-off tasks key by their anchor date.
type Schedule struct {
	StartDate     *Date
	EndDate       *Date
	StartTime     *Clock
	EndTime       *Clock
	RecurringDays []time.Weekday
	Completions   map[Date]time.Time
}

// Snapshot is the full result of evaluating a schedule at an instant.
type Snapshot struct {
	Status Status
	Day    Date

	// Start and End bound the window the status refers to: today's window,
	// or the next one when a multi-day task is waiting for tomorrow.
	Start time.Time
	End   time.Time
	// Due is the instant after which the occurrence counts as late.
	Due time.Time

	CompletedAt  time.Time
	Countdown    time.Duration
	HasCountdown bool
}

func ComputeStatus(s Schedule, now time.Time) Status {
	return Evaluate(s, now).Status
}

// ComputeCountdown returns time to start (pending), time to end (live) or
// time past due (overdue). Other statuses carry no countdown.
func ComputeCountdown(s Schedule, now time.Time) (time.Duration, bool) {
	snap := Evaluate(s, now)
	return snap.Countdown, snap.HasCountdown
}

func Evaluate(s Schedule, now time.Time) Snapshot {
	loc := now.Location()
	today := DateOf(now)

	snap := Snapshot{Status: StatusNotScheduledToday, Day: today}
	if !s.IsScheduledOn(today) {
		return snap
	}

	snap.Start, snap.End = s.EffectiveWindow(today, loc)
	snap.Due = s.dueInstant(today, loc)

	if at, ok := s.completionFor(today); ok {
		snap.CompletedAt = at
		if at.After(snap.Due) {
			snap.Status = StatusCompletedLate
		} else {
			snap.Status = StatusCompletedOnTime
		}
		return snap
	}

	switch {
	case now.Before(snap.Start):
		snap.Status = StatusPending
		snap.Countdown = snap.Start.Sub(now)
	case !now.After(snap.End):
		snap.Status = StatusLive
		snap.Countdown = snap.End.Sub(now)
	case now.After(snap.Due):
		snap.Status = StatusOverdue
		snap.Countdown = now.Sub(snap.Due)
	default:
		// today's window is over but the one-off task runs until a later day
		snap.Status = StatusPending
		snap.Start, snap.End = s.EffectiveWindow(today.AddDays(1), loc)
		snap.Countdown = snap.Start.Sub(now)
	}
	snap.HasCountdown = true
	return snap
}

func ComputeDayStatus(s Schedule, day Date, now time.Time) DayStatus {
	today := DateOf(now)

	if _, ok := s.completionFor(day); ok {
		return DayCompleted
	}
	if !s.IsScheduledOn(day) {
		return DayNone
	}

	switch {
	case day == today:
		return DayToday
	case day.Before(today):
		if s.DailyTracked() || s.anchor().Before(today) {
			return DayMissed
		}
		return DayScheduled
	default:
		return DayScheduled
	}
}

// IsScheduledOn reports whether the task has an occurrence covering day.
func (s Schedule) IsScheduledOn(day Date) bool {
	if start, end, ok := s.dateRange(); ok {
		if day.Before(start) || day.After(end) {
			return false
		}
	}
	if s.Recurring() {
		return slices.Contains(s.RecurringDays, day.Weekday())
	}
	return true
}

// EffectiveWindow combines day with the daily start/end times in loc.
func (s Schedule) EffectiveWindow(day Date, loc *time.Location) (time.Time, time.Time) {
	start, end := dayStart, dayEnd
	if s.StartTime != nil {
		start = s.StartTime.Offset()
	}
	if s.EndTime != nil {
		end = s.EndTime.Offset()
	}
	return day.At(start, loc), day.At(end, loc)
}

func (s Schedule) Recurring() bool {
	return len(s.RecurringDays) > 0
}

// DailyTracked reports whether every scheduled day is its own occurrence.
func (s Schedule) DailyTracked() bool {
	if s.Recurring() {
		return true
	}
	_, _, ok := s.dateRange()
	return !ok
}

// OccurrenceKey is the completion key for the occurrence covering day.
func (s Schedule) OccurrenceKey(day Date) Date {
	if s.DailyTracked() {
		return day
	}
	return s.anchor()
}

func (s Schedule) dateRange() (Date, Date, bool) {
	switch {
	case s.StartDate != nil && s.EndDate != nil:
		return *s.StartDate, *s.EndDate, true
	case s.StartDate != nil:
		return *s.StartDate, *s.StartDate, true
	case s.EndDate != nil:
		return *s.EndDate, *s.EndDate, true
	}
	return Date{}, Date{}, false
}

func (s Schedule) anchor() Date {
	_, end, _ := s.dateRange()
	return end
}

func (s Schedule) dueInstant(today Date, loc *time.Location) time.Time {
	day := today
	if !s.DailyTracked() {
		day = s.anchor()
	}
	_, end := s.EffectiveWindow(day, loc)
	return end
}

func (s Schedule) completionFor(day Date) (time.Time, bool) {
	if len(s.Completions) == 0 {
		return time.Time{}, false
	}
	if !s.DailyTracked() {
		start, end, _ := s.dateRange()
		if day.Before(start) || day.After(end) {
			return time.Time{}, false
		}
	}
	at, ok := s.Completions[s.OccurrenceKey(day)]
	return at, ok
}
