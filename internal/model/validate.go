package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Raisondetr3/taskflow-service/internal/schedule"
)

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidWeekday = errors.New("recurring days must be between 0 (Sunday) and 6 (Saturday)")
	ErrDateOrder      = errors.New("start date must not be after end date")
	ErrTimeOrder      = errors.New("start time must be before end time")
)

// ValidationError names the offending field of a task or flow input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// TaskInput is the raw create form. Dates are YYYY-MM-DD, times HH:MM;
// empty strings mean "not set".
type TaskInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	RecurringDays []int  `json:"recurringDays"`
}

// TaskPatch is a partial edit. nil means no change; an empty string clears
// an optional field.
type TaskPatch struct {
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
	StartTime     *string `json:"startTime,omitempty"`
	EndTime       *string `json:"endTime,omitempty"`
	RecurringDays *[]int  `json:"recurringDays,omitempty"`
}

func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &ValidationError{Field: "title", Err: ErrTitleRequired}
	}
	startDate, err := optionalDate(in.StartDate)
	if err != nil {
		return &ValidationError{Field: "startDate", Err: err}
	}
	endDate, err := optionalDate(in.EndDate)
	if err != nil {
		return &ValidationError{Field: "endDate", Err: err}
	}
	startTime, err := optionalClock(in.StartTime)
	if err != nil {
		return &ValidationError{Field: "startTime", Err: err}
	}
	endTime, err := optionalClock(in.EndTime)
	if err != nil {
		return &ValidationError{Field: "endTime", Err: err}
	}
	return validateSchedule(startDate, endDate, startTime, endTime, in.RecurringDays)
}

// ValidateAgainst checks the patch merged onto the current task.
func (p *TaskPatch) ValidateAgainst(cur *Task) error {
	if p.Title != nil {
		trimmed := strings.TrimSpace(*p.Title)
		if trimmed == "" {
			return &ValidationError{Field: "title", Err: ErrTitleRequired}
		}
		p.Title = &trimmed
	}

	startDate, endDate := cur.StartDate, cur.EndDate
	startTime, endTime := cur.StartTime, cur.EndTime
	days := cur.RecurringDays
	var err error

	if p.StartDate != nil {
		if startDate, err = optionalDate(*p.StartDate); err != nil {
			return &ValidationError{Field: "startDate", Err: err}
		}
	}
	if p.EndDate != nil {
		if endDate, err = optionalDate(*p.EndDate); err != nil {
			return &ValidationError{Field: "endDate", Err: err}
		}
	}
	if p.StartTime != nil {
		if startTime, err = optionalClock(*p.StartTime); err != nil {
			return &ValidationError{Field: "startTime", Err: err}
		}
	}
	if p.EndTime != nil {
		if endTime, err = optionalClock(*p.EndTime); err != nil {
			return &ValidationError{Field: "endTime", Err: err}
		}
	}
	if p.RecurringDays != nil {
		days = *p.RecurringDays
	}
	return validateSchedule(startDate, endDate, startTime, endTime, days)
}

func validateSchedule(startDate, endDate *schedule.Date, startTime, endTime *schedule.Clock, days []int) error {
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return &ValidationError{Field: "endDate", Err: ErrDateOrder}
	}
	if startTime != nil && endTime != nil && !startTime.Before(*endTime) {
		return &ValidationError{Field: "endTime", Err: ErrTimeOrder}
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return &ValidationError{Field: "recurringDays", Err: ErrInvalidWeekday}
		}
	}
	return nil
}

func optionalDate(s string) (*schedule.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := schedule.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func optionalClock(s string) (*schedule.Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	c, err := schedule.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateFlowTitle trims and checks a flow title.
func ValidateFlowTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &ValidationError{Field: "title", Err: ErrTitleRequired}
	}
	return title, nil
}
