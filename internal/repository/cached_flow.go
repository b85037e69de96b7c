package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/cache"
	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/google/uuid"
)

const listTTL = 60 * time.Second

type cachedFlowRepository struct {
	repo  FlowRepository
	cache cache.FlowCache
	ttl   time.Duration
}

// NewCachedFlowRepository puts a read-through cache in front of repo. Cache
// failures are logged and never fail the call.
func NewCachedFlowRepository(repo FlowRepository, c cache.FlowCache, ttl time.Duration) FlowRepository {
	return &cachedFlowRepository{
		repo:  repo,
		cache: c,
		ttl:   ttl,
	}
}

func (r *cachedFlowRepository) Create(ctx context.Context, flow *model.Flow) (*model.Flow, error) {
	created, err := r.repo.Create(ctx, flow)
	if err != nil {
		return nil, err
	}

	r.store(ctx, created)
	r.invalidateList(ctx)
	return created, nil
}

func (r *cachedFlowRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Flow, error) {
	flow, err := r.cache.GetFlow(ctx, id)
	if err == nil {
		slog.DebugContext(ctx, "Flow found in cache", slog.String("flow_id", id.String()))
		return flow, nil
	}

	flow, err = r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, flow)
	return flow, nil
}

func (r *cachedFlowRepository) Update(ctx context.Context, flow *model.Flow, prevUpdatedAt time.Time) (*model.Flow, error) {
	updated, err := r.repo.Update(ctx, flow, prevUpdatedAt)
	if err != nil {
		if IsConflictError(err) || IsNotFoundError(err) {
			// whatever we hold for this flow is stale
			r.drop(ctx, flow.ID)
		}
		return nil, err
	}

	r.store(ctx, updated)
	r.invalidateList(ctx)
	return updated, nil
}

func (r *cachedFlowRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.drop(ctx, id)
	r.invalidateList(ctx)
	return nil
}

func (r *cachedFlowRepository) List(ctx context.Context) ([]*model.Flow, error) {
	flows, err := r.cache.GetFlowList(ctx)
	if err == nil {
		slog.DebugContext(ctx, "Flow list found in cache", slog.Int("count", len(flows)))
		return flows, nil
	}

	flows, err = r.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := r.cache.SetFlowList(ctx, flows, listTTL); err != nil {
		slog.WarnContext(ctx, "Failed to cache flow list",
			slog.Int("count", len(flows)),
			slog.String("error", err.Error()))
	}
	return flows, nil
}

// HealthCheck checks the backing store first, then the cache.
func (r *cachedFlowRepository) HealthCheck(ctx context.Context) error {
	if err := NewHealthRepository(r.repo).HealthCheck(ctx); err != nil {
		return err
	}
	return r.cache.Ping(ctx)
}

func (r *cachedFlowRepository) store(ctx context.Context, flow *model.Flow) {
	if err := r.cache.SetFlow(ctx, flow, r.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache flow",
			slog.String("flow_id", flow.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (r *cachedFlowRepository) drop(ctx context.Context, id uuid.UUID) {
	if err := r.cache.DeleteFlow(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete flow from cache",
			slog.String("flow_id", id.String()),
			slog.String("error", err.Error()))
	}
}

func (r *cachedFlowRepository) invalidateList(ctx context.Context) {
	if err := r.cache.InvalidateFlowList(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate flow list cache",
			slog.String("error", err.Error()))
	}
}
