package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/google/uuid"
)

// memoryFlowRepository keeps flows in process. When path is set every
// mutation is written through to a JSON file, which is how the "local
// storage" backend persists between runs.
type memoryFlowRepository struct {
	mu    sync.RWMutex
	flows map[uuid.UUID]*model.Flow
	path  string
}

func NewMemoryFlowRepository() FlowRepository {
	return &memoryFlowRepository{flows: map[uuid.UUID]*model.Flow{}}
}

type flowFile struct {
	Flows []*model.Flow `json:"flows"`
}

// NewFileFlowRepository loads path if it exists and persists to it.
func NewFileFlowRepository(path string) (FlowRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, WrapError("open_flow_file", err)
	}
	r := &memoryFlowRepository{flows: map[uuid.UUID]*model.Flow{}, path: path}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, WrapError("open_flow_file", err)
	}

	var loaded flowFile
	if err := json.Unmarshal(b, &loaded); err != nil {
		return nil, WrapError("open_flow_file", fmt.Errorf("%w: %v", ErrInvalidData, err))
	}
	for _, f := range loaded.Flows {
		if f.Tasks == nil {
			f.Tasks = []model.Task{}
		}
		r.flows[f.ID] = f
	}
	return r, nil
}

func (r *memoryFlowRepository) Create(_ context.Context, flow *model.Flow) (*model.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.flows[flow.ID]; ok {
		return nil, WrapError("create_flow", ErrFlowAlreadyExists)
	}
	r.flows[flow.ID] = flow.Clone()
	if err := r.saveLocked(); err != nil {
		delete(r.flows, flow.ID)
		return nil, WrapError("create_flow", err)
	}
	return flow.Clone(), nil
}

func (r *memoryFlowRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, ok := r.flows[id]
	if !ok {
		return nil, WrapError("get_flow_by_id", ErrFlowNotFound)
	}
	return flow.Clone(), nil
}

func (r *memoryFlowRepository) Update(_ context.Context, flow *model.Flow, prevUpdatedAt time.Time) (*model.Flow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.flows[flow.ID]
	if !ok {
		return nil, WrapError("update_flow", ErrFlowNotFound)
	}
	if !cur.UpdatedAt.Equal(prevUpdatedAt) {
		return nil, WrapError("update_flow", ErrConcurrentUpdate)
	}

	next := flow.Clone()
	next.CreatedAt = cur.CreatedAt
	r.flows[flow.ID] = next
	if err := r.saveLocked(); err != nil {
		r.flows[flow.ID] = cur
		return nil, WrapError("update_flow", err)
	}
	return next.Clone(), nil
}

func (r *memoryFlowRepository) DeleteByID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.flows[id]
	if !ok {
		return WrapError("delete_flow", ErrFlowNotFound)
	}
	delete(r.flows, id)
	if err := r.saveLocked(); err != nil {
		r.flows[id] = cur
		return WrapError("delete_flow", err)
	}
	return nil
}

func (r *memoryFlowRepository) List(_ context.Context) ([]*model.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedLocked(), nil
}

func (r *memoryFlowRepository) sortedLocked() []*model.Flow {
	out := make([]*model.Flow, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *memoryFlowRepository) saveLocked() error {
	if r.path == "" {
		return nil
	}
	b, err := json.MarshalIndent(flowFile{Flows: r.sortedLocked()}, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
