package repository

import (
	"context"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/google/uuid"
)

// FlowRepository stores flows as whole documents: a flow and its ordered
// task list are always read and written together.
type FlowRepository interface {
	Create(ctx context.Context, flow *model.Flow) (*model.Flow, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Flow, error)
	// Update replaces the stored flow if it has not changed since
	// prevUpdatedAt, otherwise it fails with ErrConcurrentUpdate.
	Update(ctx context.Context, flow *model.Flow, prevUpdatedAt time.Time) (*model.Flow, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*model.Flow, error)
}
