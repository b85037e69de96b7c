package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/ai"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func seeded(t *testing.T) (*fixture, string, string) {
	t.Helper()
	f := newFixture(t, nil)
	ctx := context.Background()

	flow, err := f.flows.CreateFlow(ctx, dto.CreateFlowRequest{Title: "Day"})
	require.NoError(t, err)
	task, err := f.flows.AddTask(ctx, flow.ID.String(), model.TaskInput{Title: "Standup", StartTime: "10:00", EndTime: "10:15"})
	require.NoError(t, err)
	_, err = f.flows.AddTask(ctx, flow.ID.String(), model.TaskInput{Title: "Read"})
	require.NoError(t, err)
	return f, flow.ID.String(), task.ID.String()
}

func TestScheduleService_FlowStatus(t *testing.T) {
	f, flowID, _ := seeded(t)

	fs, err := f.sched.FlowStatus(context.Background(), flowID, time.Time{})
	require.NoError(t, err)
	require.Len(t, fs.Tasks, 2)
	assert.Equal(t, schedule.StatusPending, fs.Tasks[0].Status)
	assert.Equal(t, "01:00:00", fs.Tasks[0].Countdown)
	assert.Equal(t, schedule.StatusLive, fs.Tasks[1].Status)

	later := time.Date(2024, 7, 29, 10, 30, 0, 0, loc)
	fs, err = f.sched.FlowStatus(context.Background(), flowID, later)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusOverdue, fs.Tasks[0].Status)
	assert.Equal(t, "00:15:00", fs.Tasks[0].Countdown)
}

func TestScheduleService_Today(t *testing.T) {
	f, _, _ := seeded(t)

	items, err := f.sched.Today(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Standup", items[0].Title)
	assert.Equal(t, "Day", items[0].FlowTitle)
}

func TestScheduleService_TaskCalendar(t *testing.T) {
	f, flowID, taskID := seeded(t)
	ctx := context.Background()

	cal, err := f.sched.TaskCalendar(ctx, flowID, taskID, "", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.July, cal.Month)
	assert.Len(t, cal.Days, 31)

	cal, err = f.sched.TaskCalendar(ctx, flowID, taskID, "2024-02", time.Time{})
	require.NoError(t, err)
	assert.Len(t, cal.Days, 29)

	_, err = f.sched.TaskCalendar(ctx, flowID, taskID, "July", time.Time{})
	assert.Equal(t, codes.InvalidArgument, codeOf(t, err))

	_, err = f.sched.TaskCalendar(ctx, flowID, "6f1c2a8e-0000-4000-8000-000000000000", "", time.Time{})
	assert.Equal(t, codes.NotFound, codeOf(t, err))
}

func TestScheduleService_Analytics(t *testing.T) {
	f, flowID, _ := seeded(t)
	ctx := context.Background()

	a, err := f.sched.Analytics(ctx, flowID, "", "", time.Time{})
	require.NoError(t, err)
	assert.Len(t, a.Days, defaultAnalyticsDays)
	assert.Equal(t, "2024-07-29", a.To.String())

	_, err = f.sched.Analytics(ctx, flowID, "2024-08-01", "2024-07-01", time.Time{})
	assert.Equal(t, codes.InvalidArgument, codeOf(t, err))

	_, err = f.sched.Analytics(ctx, flowID, "yesterday", "", time.Time{})
	assert.Equal(t, codes.InvalidArgument, codeOf(t, err))
}

func TestScheduleService_ReportAndICS(t *testing.T) {
	f, flowID, taskID := seeded(t)
	ctx := context.Background()

	text, err := f.sched.Report(ctx, flowID, time.Time{})
	require.NoError(t, err)
	assert.Contains(t, text, "Flow: Day")
	assert.Contains(t, text, "Starts in: 01:00:00")

	ics, err := f.sched.ExportICS(ctx, flowID, taskID, time.Time{})
	require.NoError(t, err)
	assert.Contains(t, ics, "DTSTART:20240729T080000Z")
	assert.Contains(t, ics, "RRULE:FREQ=DAILY")
}

func TestSuggestionService(t *testing.T) {
	ctx := context.Background()

	_, err := NewSuggestionService(nil, time.Second).SuggestTasks(ctx, "Go")
	assert.Equal(t, codes.Unavailable, codeOf(t, err))

	svc := NewSuggestionService(stubSuggester{tasks: []string{"a"}}, time.Second)
	tasks, err := svc.SuggestTasks(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tasks)

	res, err := svc.SuggestResources(ctx, "goroutines")
	require.NoError(t, err)
	assert.Equal(t, []ai.Resource{{Title: "Docs"}}, res)
}

type failingHealth struct{}

func (failingHealth) HealthCheck(context.Context) error { return stderrors.New("db down") }

func TestHealthService(t *testing.T) {
	ctx := context.Background()

	ok, err := NewHealthService(repository.NewHealthRepository(repository.NewMemoryFlowRepository()), "memory").Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, ok.Status)
	assert.Equal(t, "memory", ok.Storage)

	bad, err := NewHealthService(failingHealth{}, "postgres").Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, bad.Status)
	assert.Equal(t, "db down", bad.Error)
}
