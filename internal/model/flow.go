package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNotInFlow = errors.New("task not found in flow")
	ErrInvalidMove   = errors.New("reorder index out of range")
)

// Flow is a named, ordered list of tasks. Task order is user controlled.
type Flow struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewFlow creates a flow seeded with plain tasks, one per title.
func NewFlow(title string, taskTitles []string, now time.Time) *Flow {
	f := &Flow{
		ID:        uuid.New(),
		Title:     title,
		Tasks:     []Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, tt := range taskTitles {
		in := TaskInput{Title: tt}
		if in.Validate() != nil {
			continue
		}
		f.Tasks = append(f.Tasks, NewTask(in, now))
	}
	return f
}

func (f *Flow) Rename(title string, now time.Time) {
	f.Title = title
	f.UpdatedAt = now
}

func (f *Flow) Task(id uuid.UUID) (*Task, error) {
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			return &f.Tasks[i], nil
		}
	}
	return nil, ErrTaskNotInFlow
}

func (f *Flow) AddTask(t Task, now time.Time) {
	f.Tasks = append(f.Tasks, t)
	f.UpdatedAt = now
}

func (f *Flow) RemoveTask(id uuid.UUID, now time.Time) error {
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			f.Tasks = append(f.Tasks[:i], f.Tasks[i+1:]...)
			f.UpdatedAt = now
			return nil
		}
	}
	return ErrTaskNotInFlow
}

// MoveTask removes the task at from and reinserts it at to.
func (f *Flow) MoveTask(from, to int, now time.Time) error {
	n := len(f.Tasks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return ErrInvalidMove
	}
	moved := f.Tasks[from]
	rest := append(f.Tasks[:from:from], f.Tasks[from+1:]...)
	out := make([]Task, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	f.Tasks = out
	f.UpdatedAt = now
	return nil
}

// Clone returns a deep copy so callers can mutate without sharing state.
func (f *Flow) Clone() *Flow {
	c := *f
	c.Tasks = make([]Task, len(f.Tasks))
	for i := range f.Tasks {
		c.Tasks[i] = f.Tasks[i].clone()
	}
	return &c
}
