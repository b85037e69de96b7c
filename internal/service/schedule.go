package service

import (
	"bytes"
	"context"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/report"
	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/internal/schedule"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
)

// defaultAnalyticsDays is the window used when no start date is given.
const defaultAnalyticsDays = 30

// ScheduleService answers read-only questions about flows at an instant.
// A zero at means "now"; the location of at decides which calendar day
// is today.
type ScheduleService interface {
	FlowStatus(ctx context.Context, flowID string, at time.Time) (*report.FlowStatus, error)
	Today(ctx context.Context, at time.Time) ([]report.AgendaItem, error)
	TaskCalendar(ctx context.Context, flowID, taskID, month string, at time.Time) (*report.TaskCalendar, error)
	Analytics(ctx context.Context, flowID, from, to string, at time.Time) (*report.Analytics, error)
	Report(ctx context.Context, flowID string, at time.Time) (string, error)
	ExportICS(ctx context.Context, flowID, taskID string, at time.Time) (string, error)
}

type scheduleService struct {
	repo repository.FlowRepository
	now  func() time.Time
}

func NewScheduleService(repo repository.FlowRepository, now func() time.Time) ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &scheduleService{repo: repo, now: now}
}

func (s *scheduleService) FlowStatus(ctx context.Context, flowID string, at time.Time) (*report.FlowStatus, error) {
	start := time.Now()
	flow, err := s.load(ctx, flowID)
	if err != nil {
		return nil, s.fail(ctx, "FlowStatus", flowID, "", start, err)
	}

	fs := report.Statuses(flow, s.instant(at))
	logger.LogFlowOperation(ctx, "FlowStatus", flowID, "", time.Since(start), nil)
	return &fs, nil
}

func (s *scheduleService) Today(ctx context.Context, at time.Time) ([]report.AgendaItem, error) {
	start := time.Now()
	flows, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, "Today", "", "", start, err)
	}

	items := report.Agenda(flows, s.instant(at))
	logger.LogFlowOperation(ctx, "Today", "", "", time.Since(start), nil)
	return items, nil
}

func (s *scheduleService) TaskCalendar(ctx context.Context, flowID, taskID, month string, at time.Time) (*report.TaskCalendar, error) {
	start := time.Now()
	operation := "TaskCalendar"
	now := s.instant(at)

	year, mon := now.Year(), now.Month()
	if month != "" {
		m, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, s.fail(ctx, operation, flowID, taskID, start, errors.ErrInvalidMonth)
		}
		year, mon = m.Year(), m.Month()
	}

	task, err := s.loadTask(ctx, flowID, taskID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, taskID, start, err)
	}

	cal := report.MonthCalendar(task, year, mon, now)
	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), nil)
	return &cal, nil
}

func (s *scheduleService) Analytics(ctx context.Context, flowID, from, to string, at time.Time) (*report.Analytics, error) {
	start := time.Now()
	operation := "Analytics"
	now := s.instant(at)

	toDate := schedule.DateOf(now)
	if to != "" {
		d, err := schedule.ParseDate(to)
		if err != nil {
			return nil, s.fail(ctx, operation, flowID, "", start, errors.ErrInvalidRange)
		}
		toDate = d
	}
	fromDate := toDate.AddDays(-(defaultAnalyticsDays - 1))
	if from != "" {
		d, err := schedule.ParseDate(from)
		if err != nil {
			return nil, s.fail(ctx, operation, flowID, "", start, errors.ErrInvalidRange)
		}
		fromDate = d
	}

	flow, err := s.load(ctx, flowID)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}

	a, err := report.Analyze(flow, fromDate, toDate, now)
	if err != nil {
		return nil, s.fail(ctx, operation, flowID, "", start, err)
	}
	logger.LogFlowOperation(ctx, operation, flowID, "", time.Since(start), nil)
	return &a, nil
}

func (s *scheduleService) Report(ctx context.Context, flowID string, at time.Time) (string, error) {
	start := time.Now()
	flow, err := s.load(ctx, flowID)
	if err != nil {
		return "", s.fail(ctx, "Report", flowID, "", start, err)
	}

	var buf bytes.Buffer
	if err := report.WriteText(&buf, flow, s.instant(at)); err != nil {
		return "", s.fail(ctx, "Report", flowID, "", start, err)
	}
	logger.LogFlowOperation(ctx, "Report", flowID, "", time.Since(start), nil)
	return buf.String(), nil
}

func (s *scheduleService) ExportICS(ctx context.Context, flowID, taskID string, at time.Time) (string, error) {
	start := time.Now()
	task, err := s.loadTask(ctx, flowID, taskID)
	if err != nil {
		return "", s.fail(ctx, "ExportICS", flowID, taskID, start, err)
	}

	now := s.instant(at)
	ics, err := report.BuildICS(task, now.Location(), now)
	if err != nil {
		return "", s.fail(ctx, "ExportICS", flowID, taskID, start, err)
	}
	logger.LogFlowOperation(ctx, "ExportICS", flowID, taskID, time.Since(start), nil)
	return ics, nil
}

func (s *scheduleService) instant(at time.Time) time.Time {
	if at.IsZero() {
		return s.now()
	}
	return at
}

func (s *scheduleService) load(ctx context.Context, flowID string) (*model.Flow, error) {
	id, err := parseFlowID(flowID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *scheduleService) loadTask(ctx context.Context, flowID, taskID string) (*model.Task, error) {
	fid, tid, err := parseIDs(flowID, taskID)
	if err != nil {
		return nil, err
	}
	flow, err := s.repo.GetByID(ctx, fid)
	if err != nil {
		return nil, err
	}
	return flow.Task(tid)
}

func (s *scheduleService) fail(ctx context.Context, operation, flowID, taskID string, start time.Time, err error) error {
	serviceErr := errors.WrapDomainError(err)
	logger.LogFlowOperation(ctx, operation, flowID, taskID, time.Since(start), serviceErr)
	return serviceErr
}
