package repository

import (
	"context"
)

type HealthRepository interface {
	HealthCheck(ctx context.Context) error
}

type storageHealth struct {
	repo FlowRepository
}

// NewHealthRepository checks whatever backend repo is built on. Backends
// without a remote dependency are always healthy.
func NewHealthRepository(repo FlowRepository) HealthRepository {
	return &storageHealth{repo: repo}
}

func (h *storageHealth) HealthCheck(ctx context.Context) error {
	if checker, ok := h.repo.(HealthRepository); ok {
		return checker.HealthCheck(ctx)
	}
	return nil
}
