package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/ai"
	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/queue"
	"github.com/Raisondetr3/taskflow-service/internal/report"
	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/google/uuid"
)

// maxUpdateAttempts bounds the read-modify-write retries on a conflicting
// concurrent update.
const maxUpdateAttempts = 3

type FlowService interface {
	ListFlows(ctx context.Context) ([]*model.Flow, error)
	GetFlow(ctx context.Context, flowID string) (*model.Flow, error)
	CreateFlow(ctx context.Context, req dto.CreateFlowRequest) (*model.Flow, error)
	RenameFlow(ctx context.Context, flowID, title string) (*model.Flow, error)
	DeleteFlow(ctx context.Context, flowID string) error

	AddTask(ctx context.Context, flowID string, in model.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, flowID, taskID string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, flowID, taskID string) error
	ReorderTasks(ctx context.Context, flowID string, from, to int) (*model.Flow, error)
	ToggleTask(ctx context.Context, flowID, taskID string) (*ToggleResult, error)
}

type ToggleResult struct {
	Task      *model.Task       `json:"task"`
	Completed bool              `json:"completed"`
	Status    report.TaskStatus `json:"status"`
}

type flowService struct {
	repo      repository.FlowRepository
	events    queue.Publisher
	suggester ai.Suggester
	now       func() time.Time
}

// NewFlowService wires the flow use cases. now may be nil, in which case the
// wall clock is used.
func NewFlowService(repo repository.FlowRepository, events queue.Publisher, suggester ai.Suggester, now func() time.Time) FlowService {
	if now == nil {
		now = time.Now
	}
	if suggester == nil {
		suggester = ai.Disabled{}
	}
	return &flowService{
		repo:      repo,
		events:    events,
		suggester: suggester,
		now:       now,
	}
}

func (s *flowService) ListFlows(ctx context.Context) ([]*model.Flow, error) {
	start := time.Now()
	flows, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, "ListFlows", "", "", start, err)
	}
	logger.LogFlowOperation(ctx, "ListFlows", "", "", time.Since(start), nil)
	return flows, nil
}

func (s *flowService) GetFlow(ctx context.Context, flowID string) (*model.Flow, error) {
	start := time.Now()
	id, err := parseFlowID(flowID)
	if err != nil {
		return nil, s.fail(ctx, "GetFlow", flowID, "", start, err)
	}

	flow, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "GetFlow", flowID, "", start, err)
	}
	logger.LogFlowOperation(ctx, "GetFlow", flowID, "", time.Since(start), nil)
	return flow, nil
}

func (s *flowService) CreateFlow(ctx context.Context, req dto.CreateFlowRequest) (*model.Flow, error) {
	start := time.Now()
	operation := "CreateFlow"

	title, err := model.ValidateFlowTitle(req.Title)
	if err != nil {
		return nil, s.fail(ctx, operation, "", "", start, errors.ErrTitleNotSpecified)
	}

	taskTitles := req.Tasks
	if req.Generate && len(taskTitles) == 0 {
		generated, err := s.suggester.GenerateTasks(ctx, title)
		if err != nil {
			// the flow is still useful without starter tasks
			slog.WarnContext(ctx, "Starter task generation failed",
				slog.String("title", title),
				slog.String("error", err.Error()))
		}
		taskTitles = generated
	}

	created, err := s.repo.Create(ctx, model.NewFlow(title, taskTitles, s.now()))
	if err != nil {
		return nil, s.fail(ctx, operation, "", "", start, err)
	}

	logger.LogFlowOperation(ctx, operation, created.ID.String(), "", time.Since(start), nil)
	s.publish(ctx, queue.EventFlowCreated, created.ID, uuid.Nil, map[string]any{
		"title": created.Title,
		"tasks": len(created.Tasks),
	})
	return created, nil
}

func (s *flowService) RenameFlow(ctx context.Context, flowID, title string) (*model.Flow, error) {
	start := time.Now()
	operation := "RenameFlow"

	id, err := parseFlowID(flowID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}
	title, err = model.ValidateFlowTitle(title)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, errors.ErrTitleNotSpecified)
	}

	updated, err := s.mutate(ctx, id, func(f *model.Flow, now time.Time) error {
		f.Rename(title, now)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, "", time.Since(start), nil)
	s.publish(ctx, queue.EventFlowUpdated, id, uuid.Nil, map[string]any{"title": title})
	return updated, nil
}

func (s *flowService) DeleteFlow(ctx context.Context, flowID string) error {
	start := time.Now()
	operation := "DeleteFlow"

	id, err := parseFlowID(flowID)
	if err != nil {
		return s.fail(ctx, operation, flowID, "", start, err)
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return s.fail(ctx, operation, flowID, "", start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, "", time.Since(start), nil)
	s.publish(ctx, queue.EventFlowDeleted, id, uuid.Nil, nil)
	return nil
}

func (s *flowService) AddTask(ctx context.Context, flowID string, in model.TaskInput) (*model.Task, error) {
	start := time.Now()
	operation := "AddTask"

	id, err := parseFlowID(flowID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	var task model.Task
	_, err = s.mutate(ctx, id, func(f *model.Flow, now time.Time) error {
		task = model.NewTask(in, now)
		f.AddTask(task, now)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, task.ID.String(), time.Since(start), nil)
	s.publish(ctx, queue.EventTaskCreated, id, task.ID, task)
	return &task, nil
}

func (s *flowService) UpdateTask(ctx context.Context, flowID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	start := time.Now()
	operation := "UpdateTask"

	fid, tid, err := parseIDs(flowID, taskID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, taskID, start, err)
	}

	var task model.Task
	_, err = s.mutate(ctx, fid, func(f *model.Flow, now time.Time) error {
		t, err := f.Task(tid)
		if err != nil {
			return err
		}
		if err := patch.ValidateAgainst(t); err != nil {
			return err
		}
		t.Update(patch, now)
		f.UpdatedAt = now
		task = *t
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, taskID, start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), nil)
	s.publish(ctx, queue.EventTaskUpdated, fid, tid, task)
	return &task, nil
}

func (s *flowService) DeleteTask(ctx context.Context, flowID, taskID string) error {
	start := time.Now()
	operation := "DeleteTask"

	fid, tid, err := parseIDs(flowID, taskID)
	if err != nil {
		return s.fail(ctx, operation, flowID, taskID, start, err)
	}

	_, err = s.mutate(ctx, fid, func(f *model.Flow, now time.Time) error {
		return f.RemoveTask(tid, now)
	})
	if err != nil {
		return s.fail(ctx, operation, flowID, taskID, start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), nil)
	s.publish(ctx, queue.EventTaskDeleted, fid, tid, nil)
	return nil
}

func (s *flowService) ReorderTasks(ctx context.Context, flowID string, from, to int) (*model.Flow, error) {
	start := time.Now()
	operation := "ReorderTasks"

	id, err := parseFlowID(flowID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	updated, err := s.mutate(ctx, id, func(f *model.Flow, now time.Time) error {
		return f.MoveTask(from, to, now)
	})
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, "", time.Since(start), nil)
	s.publish(ctx, queue.EventTaskReordered, id, uuid.Nil, map[string]int{"from": from, "to": to})
	return updated, nil
}

func (s *flowService) ToggleTask(ctx context.Context, flowID, taskID string) (*ToggleResult, error) {
	start := time.Now()
	operation := "ToggleTask"

	fid, tid, err := parseIDs(flowID, taskID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, taskID, start, err)
	}

	var (
		task      model.Task
		completed bool
		at        time.Time
	)
	_, err = s.mutate(ctx, fid, func(f *model.Flow, now time.Time) error {
		t, err := f.Task(tid)
		if err != nil {
			return err
		}
		if completed, err = t.ToggleCompletion(now); err != nil {
			return err
		}
		f.UpdatedAt = now
		task, at = *t, now
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, taskID, start, err)
	}

	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), nil)
	s.publish(ctx, queue.EventTaskToggled, fid, tid, map[string]any{"completed": completed})
	return &ToggleResult{
		Task:      &task,
		Completed: completed,
		Status:    report.StatusOf(&task, at),
	}, nil
}

// mutate reads the flow, applies fn and writes it back, retrying from a
// fresh read when another writer got there first.
func (s *flowService) mutate(ctx context.Context, id uuid.UUID, fn func(f *model.Flow, now time.Time) error) (*model.Flow, error) {
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var flow *model.Flow
		flow, err = s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		prev := flow.UpdatedAt
		if err := fn(flow, s.now()); err != nil {
			return nil, err
		}

		var updated *model.Flow
		updated, err = s.repo.Update(ctx, flow, prev)
		if err == nil {
			return updated, nil
		}
		if !repository.IsConflictError(err) {
			return nil, err
		}
		slog.DebugContext(ctx, "Concurrent flow update, retrying",
			slog.String("flow_id", id.String()),
			slog.Int("attempt", attempt+1))
	}
	return nil, err
}

func (s *flowService) fail(ctx context.Context, operation, flowID, taskID string, start time.Time, err error) error {
	serviceErr := errors.WrapDomainError(err)
	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), serviceErr)
	return serviceErr
}

func (s *flowService) publish(ctx context.Context, eventType string, flowID, taskID uuid.UUID, data any) {
	if s.events == nil {
		return
	}
	ev := queue.Event{
		Type:      eventType,
		FlowID:    flowID.String(),
		Timestamp: s.now().UTC(),
		Data:      data,
	}
	if taskID != uuid.Nil {
		ev.TaskID = taskID.String()
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish event",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
	}
}

func parseFlowID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.ErrInvalidFlowID
	}
	return id, nil
}

func parseIDs(flowID, taskID string) (uuid.UUID, uuid.UUID, error) {
	fid, err := parseFlowID(flowID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	tid, err := uuid.Parse(taskID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.ErrInvalidTaskID
	}
	return fid, tid, nil
}
