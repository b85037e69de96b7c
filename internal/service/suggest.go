package service

import (
	"context"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/ai"
	"github.com/Raisondetr3/taskflow-service/internal/errors"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
)

type SuggestionService interface {
	SuggestTasks(ctx context.Context, title string) ([]string, error)
	SuggestResources(ctx context.Context, description string) ([]ai.Resource, error)
}

type suggestionService struct {
	suggester ai.Suggester
	timeout   time.Duration
}

func NewSuggestionService(suggester ai.Suggester, timeout time.Duration) SuggestionService {
	if suggester == nil {
		suggester = ai.Disabled{}
	}
	return &suggestionService{suggester: suggester, timeout: timeout}
}

func (s *suggestionService) SuggestTasks(ctx context.Context, title string) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tasks, err := s.suggester.GenerateTasks(ctx, title)
	if err != nil {
		serviceErr := errors.WrapDomainError(err)
		logger.LogError(ctx, serviceErr, "SuggestTasks")
		return nil, serviceErr
	}
	return tasks, nil
}

func (s *suggestionService) SuggestResources(ctx context.Context, description string) ([]ai.Resource, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resources, err := s.suggester.SuggestResources(ctx, description)
	if err != nil {
		serviceErr := errors.WrapDomainError(err)
		logger.LogError(ctx, serviceErr, "SuggestResources")
		return nil, serviceErr
	}
	return resources, nil
}

func (s *suggestionService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
