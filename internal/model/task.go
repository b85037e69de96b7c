package model

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/google/uuid"
)

var ErrNotScheduledToday = errors.New("task is not scheduled today")

// Task is a schedulable to-do item. It lives inside exactly one Flow.
type Task struct {
	ID            uuid.UUID                   `json:"id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description,omitempty"`
	StartDate     *schedule.Date              `json:"startDate,omitempty"`
	EndDate       *schedule.Date              `json:"endDate,omitempty"`
	StartTime     *schedule.Clock             `json:"startTime,omitempty"`
	EndTime       *schedule.Clock             `json:"endTime,omitempty"`
	RecurringDays []int                       `json:"recurringDays,omitempty"`
	Completions   map[schedule.Date]time.Time `json:"completions,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// NewTask builds a task from an already validated input.
func NewTask(in TaskInput, now time.Time) Task {
	t := Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.StartDate, _ = optionalDate(in.StartDate)
	t.EndDate, _ = optionalDate(in.EndDate)
	t.StartTime, _ = optionalClock(in.StartTime)
	t.EndTime, _ = optionalClock(in.EndTime)
	t.RecurringDays = normalizeWeekdays(in.RecurringDays)
	return t
}

// Schedule returns the fields the status engine works on.
func (t *Task) Schedule() schedule.Schedule {
	s := schedule.Schedule{
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Completions: t.Completions,
	}
	for _, d := range t.RecurringDays {
		s.RecurringDays = append(s.RecurringDays, time.Weekday(d))
	}
	return s
}

// Update applies an already validated patch.
func (t *Task) Update(p TaskPatch, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StartDate != nil {
		t.StartDate, _ = optionalDate(*p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate, _ = optionalDate(*p.EndDate)
	}
	if p.StartTime != nil {
		t.StartTime, _ = optionalClock(*p.StartTime)
	}
	if p.EndTime != nil {
		t.EndTime, _ = optionalClock(*p.EndTime)
	}
	if p.RecurringDays != nil {
		t.RecurringDays = normalizeWeekdays(*p.RecurringDays)
	}
	t.UpdatedAt = now
}

// ToggleCompletion flips the completion of the occurrence covering now's day
// and reports whether it is completed afterwards.
func (t *Task) ToggleCompletion(now time.Time) (bool, error) {
	s := t.Schedule()
	today := schedule.DateOf(now)
	if s.Recurring() && !s.IsScheduledOn(today) {
		return false, ErrNotScheduledToday
	}

	key := s.OccurrenceKey(today)
	t.UpdatedAt = now
	if _, done := t.Completions[key]; done {
		delete(t.Completions, key)
		if len(t.Completions) == 0 {
			t.Completions = nil
		}
		return false, nil
	}
	if t.Completions == nil {
		t.Completions = map[schedule.Date]time.Time{}
	}
	t.Completions[key] = now
	return true, nil
}

// CompletedDates lists the completed occurrence keys in ascending order.
func (t *Task) CompletedDates() []schedule.Date {
	dates := make([]schedule.Date, 0, len(t.Completions))
	for d := range t.Completions {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b schedule.Date) int {
		return b.DaysUntil(a)
	})
	return dates
}

func (t *Task) clone() Task {
	c := *t
	c.RecurringDays = slices.Clone(t.RecurringDays)
	if t.Completions != nil {
		c.Completions = make(map[schedule.Date]time.Time, len(t.Completions))
		for k, v := range t.Completions {
			c.Completions[k] = v
		}
	}
	return c
}

// UnmarshalJSON also accepts the two legacy completion shapes and folds them
// into Completions under their occurrence key: a "completedDates" list of
// day keys, and a single "completed" flag with "completionDate". Stored
// weekdays are checked the same way input is.
func (t *Task) UnmarshalJSON(b []byte) error {
	type taskAlias Task
	var raw struct {
		taskAlias
		CompletedDates []string   `json:"completedDates"`
		Completed      *bool      `json:"completed"`
		CompletionDate *time.Time `json:"completionDate"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = Task(raw.taskAlias)
	for _, d := range t.RecurringDays {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "recurringDays", Err: ErrInvalidWeekday}
		}
	}
	t.RecurringDays = normalizeWeekdays(t.RecurringDays)

	s := t.Schedule()
	for _, v := range raw.CompletedDates {
		d, err := schedule.ParseDate(v)
		if err != nil {
			return err
		}
		t.markCompleted(s.OccurrenceKey(d), legacyCompletionTime(d))
	}

	if raw.Completed != nil && *raw.Completed {
		at := t.UpdatedAt
		if raw.CompletionDate != nil {
			at = *raw.CompletionDate
		}
		t.markCompleted(s.OccurrenceKey(schedule.DateOf(at)), at)
	}
	return nil
}

// earliestZone is the furthest-ahead UTC offset in use.
var earliestZone = time.FixedZone("UTC+14", 14*60*60)

// legacyCompletionTime stamps a day key that carries no time of day. The
// first instant of d anywhere on earth is never after d's due time in the
// viewer's zone, so the completion always reads as on time.
func legacyCompletionTime(d schedule.Date) time.Time {
	return d.At(0, earliestZone)
}

func (t *Task) markCompleted(key schedule.Date, at time.Time) {
	if t.Completions == nil {
		t.Completions = map[schedule.Date]time.Time{}
	}
	if _, ok := t.Completions[key]; !ok {
		t.Completions[key] = at
	}
}

func normalizeWeekdays(days []int) []int {
	if len(days) == 0 {
		return nil
	}
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}
