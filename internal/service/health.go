package service

import (
	"context"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/repository"
	"github.com/Raisondetr3/taskflow-service/pkg/dto"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
)

type HealthService interface {
	Health(ctx context.Context) (*dto.HealthStatus, error)
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type healthService struct {
	healthRepo repository.HealthRepository
	storage    string
}

func NewHealthService(healthRepo repository.HealthRepository, storage string) HealthService {
	return &healthService{
		healthRepo: healthRepo,
		storage:    storage,
	}
}

func (s *healthService) Health(ctx context.Context) (*dto.HealthStatus, error) {
	status := &dto.HealthStatus{
		Status:    StatusHealthy,
		Storage:   s.storage,
		Timestamp: time.Now(),
	}

	if err := s.healthRepo.HealthCheck(ctx); err != nil {
		logger.LogError(ctx, err, "storage_health_check")
		status.Status = StatusUnhealthy
		status.Error = err.Error()
	}
	return status, nil
}
