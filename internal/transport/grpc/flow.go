package grpc

import (
	"context"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"google.golang.org/protobuf/types/known/structpb"
)

type flowRef struct {
	FlowID string `json:"flowId"`
	TaskID string `json:"taskId"`
	At     string `json:"at"`
}

type addTaskRequest struct {
	FlowID string          `json:"flowId"`
	Task   model.TaskInput `json:"task"`
}

func (s *GRPCServer) ListFlows(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	flows, err := s.flowService.ListFlows(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"flows": flows})
}

func (s *GRPCServer) GetFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var ref flowRef
	if err := fromStruct(req, &ref); err != nil {
		return nil, err
	}
	flow, err := s.flowService.GetFlow(ctx, ref.FlowID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(flow)
}

func (s *GRPCServer) CreateFlow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in dto.CreateFlowRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	flow, err := s.flowService.CreateFlow(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(flow)
}

func (s *GRPCServer) AddTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in addTaskRequest
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	task, err := s.flowService.AddTask(ctx, in.FlowID, in.Task)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(task)
}

func (s *GRPCServer) ToggleTask(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var ref flowRef
	if err := fromStruct(req, &ref); err != nil {
		return nil, err
	}
	res, err := s.flowService.ToggleTask(ctx, ref.FlowID, ref.TaskID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

func (s *GRPCServer) GetFlowStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var ref flowRef
	if err := fromStruct(req, &ref); err != nil {
		return nil, err
	}

	var at time.Time
	if ref.At != "" {
		parsed, err := time.Parse(time.RFC3339, ref.At)
		if err != nil {
			return nil, errors.ErrInvalidInstant.ToGRPCStatus()
		}
		at = parsed
	}

	status, err := s.scheduleService.FlowStatus(ctx, ref.FlowID, at)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(status)
}
