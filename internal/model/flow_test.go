package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(f *Flow) []string {
	out := make([]string, len(f.Tasks))
	for i, t := range f.Tasks {
		out[i] = t.Title
	}
	return out
}

func TestNewFlow_SeedsTasksInOrder(t *testing.T) {
	f := NewFlow("Learn Go", []string{"Install toolchain", " ", "Tour of Go"}, monday)

	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.Equal(t, []string{"Install toolchain", "Tour of Go"}, titles(f))
}

func TestFlow_MoveTask(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"same slot", 1, 1, []string{"a", "b", "c", "d"}},
		{"to end", 0, 3, []string{"b", "c", "d", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlow("x", []string{"a", "b", "c", "d"}, monday)
			require.NoError(t, f.MoveTask(tt.from, tt.to, monday))
			assert.Equal(t, tt.want, titles(f))
		})
	}

	f := NewFlow("x", []string{"a"}, monday)
	assert.ErrorIs(t, f.MoveTask(0, 1, monday), ErrInvalidMove)
	assert.ErrorIs(t, f.MoveTask(-1, 0, monday), ErrInvalidMove)
}

func TestFlow_RemoveTaskAndLookup(t *testing.T) {
	f := NewFlow("x", []string{"a", "b"}, monday)
	id := f.Tasks[0].ID

	got, err := f.Task(id)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Title)

	require.NoError(t, f.RemoveTask(id, monday))
	assert.Equal(t, []string{"b"}, titles(f))

	_, err = f.Task(id)
	assert.ErrorIs(t, err, ErrTaskNotInFlow)
	assert.ErrorIs(t, f.RemoveTask(id, monday), ErrTaskNotInFlow)
}

func TestFlow_CloneIsDeep(t *testing.T) {
	f := NewFlow("x", []string{"a"}, monday)
	_, err := f.Tasks[0].ToggleCompletion(monday)
	require.NoError(t, err)

	c := f.Clone()
	_, err = c.Tasks[0].ToggleCompletion(monday)
	require.NoError(t, err)

	assert.Len(t, f.Tasks[0].Completions, 1)
	assert.Empty(t, c.Tasks[0].Completions)
}
