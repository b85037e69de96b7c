package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/ai"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/internal/report"
	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ServiceError struct {
	Code    codes.Code `json:"code"`
	Message string     `json:"message"`
	Time    time.Time  `json:"time"`
}

func NewServiceError(code codes.Code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Time:    time.Now(),
	}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("code: %s, message: %s, time: %s",
		e.Code.String(), e.Message, e.Time.Format(time.RFC3339))
}

func (e *ServiceError) ToGRPCStatus() error {
	return status.Error(e.Code, e.Message)
}

func (e *ServiceError) HTTPStatus() int {
	switch e.Code {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.AlreadyExists, codes.Aborted:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrTitleNotSpecified = NewServiceError(codes.InvalidArgument, "title is required")
	ErrInvalidFlowID     = NewServiceError(codes.InvalidArgument, "invalid flow id")
	ErrInvalidTaskID     = NewServiceError(codes.InvalidArgument, "invalid task id")
	ErrInvalidInstant    = NewServiceError(codes.InvalidArgument, "invalid instant, want RFC3339")
	ErrInvalidMonth      = NewServiceError(codes.InvalidArgument, "invalid month, want YYYY-MM")
	ErrInvalidRange      = NewServiceError(codes.InvalidArgument, "invalid date range")
	ErrInvalidBody       = NewServiceError(codes.InvalidArgument, "invalid request body")
	ErrInvalidReorder    = NewServiceError(codes.InvalidArgument, "reorder index out of range")
	ErrFlowNotFound      = NewServiceError(codes.NotFound, "flow not found")
	ErrTaskNotFound      = NewServiceError(codes.NotFound, "task not found")
	ErrFlowAlreadyExists = NewServiceError(codes.AlreadyExists, "flow already exists")
	ErrConcurrentUpdate  = NewServiceError(codes.Aborted, "flow was modified concurrently, retry")
	ErrNotScheduledToday = NewServiceError(codes.FailedPrecondition, "task is not scheduled today")
	ErrNoOccurrence      = NewServiceError(codes.FailedPrecondition, "task has no occurrence to export")
	ErrAIUnavailable     = NewServiceError(codes.Unavailable, "AI suggestions are not configured")
	ErrAIBadReply        = NewServiceError(codes.Unavailable, "AI model returned an unusable reply")
	ErrInternalError     = NewServiceError(codes.Internal, "internal server error")
)

// WrapValidationError turns a model validation failure into InvalidArgument.
func WrapValidationError(err error) *ServiceError {
	return NewServiceError(codes.InvalidArgument, err.Error())
}

// WrapDomainError maps model, repository, report and ai errors to service
// errors.
func WrapDomainError(err error) *ServiceError {
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		return svcErr
	case model.IsValidationError(err):
		return WrapValidationError(err)
	case errors.Is(err, model.ErrTaskNotInFlow):
		return ErrTaskNotFound
	case errors.Is(err, model.ErrInvalidMove):
		return ErrInvalidReorder
	case errors.Is(err, model.ErrNotScheduledToday):
		return ErrNotScheduledToday
	case errors.Is(err, report.ErrInvalidRange):
		return ErrInvalidRange
	case errors.Is(err, report.ErrNoOccurrence):
		return ErrNoOccurrence
	case errors.Is(err, ai.ErrDisabled):
		return ErrAIUnavailable
	case errors.Is(err, ai.ErrEmptyPrompt):
		return NewServiceError(codes.InvalidArgument, ai.ErrEmptyPrompt.Error())
	case errors.Is(err, ai.ErrBadModelReply):
		return ErrAIBadReply
	case errors.Is(err, context.DeadlineExceeded):
		return NewServiceError(codes.DeadlineExceeded, "operation timed out")
	case repository.IsNotFoundError(err):
		return ErrFlowNotFound
	case repository.IsConstraintError(err):
		return ErrFlowAlreadyExists
	case repository.IsConflictError(err):
		return ErrConcurrentUpdate
	case repository.IsConnectionError(err):
		return NewServiceError(codes.Unavailable, "storage unavailable")
	default:
		return NewServiceError(codes.Internal, fmt.Sprintf("repository error: %v", err))
	}
}
