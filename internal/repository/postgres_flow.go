package repository

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Raisondetr3/taskflow-service/internal/model"
	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flowColumns = `id, title, tasks, created_at, updated_at`

type postgresFlowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresFlowRepository(db *pgxpool.Pool) FlowRepository {
	return &postgresFlowRepository{
		db: db,
	}
}

// Migrate creates the flows table. Tasks are kept as a JSONB array so a
// flow's order and contents change atomically.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	q := `
	CREATE TABLE IF NOT EXISTS flows (
		id         UUID PRIMARY KEY,
		title      TEXT NOT NULL,
		tasks      JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_flows_created_at ON flows(created_at);
	`
	start := time.Now()
	_, err := db.Exec(ctx, q)
	logger.LogDatabaseQuery(ctx, "migrate_flows", nil, time.Since(start), err)
	if err != nil {
		return HandlePgxError("migrate", err)
	}
	return nil
}

func (r *postgresFlowRepository) Create(ctx context.Context, flow *model.Flow) (*model.Flow, error) {
	start := time.Now()
	q := `
		INSERT INTO flows (id, title, tasks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + flowColumns

	tasks, err := json.Marshal(flow.Tasks)
	if err != nil {
		return nil, WrapError("create_flow", err)
	}

	created, err := scanFlow(r.db.QueryRow(ctx, q,
		flow.ID, flow.Title, tasks, flow.CreatedAt, flow.UpdatedAt,
	))
	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, "create_flow", q, duration, err)
		return nil, HandlePgxError("create_flow", err)
	}

	r.logSlowQuery(ctx, "create_flow", duration)
	return created, nil
}

func (r *postgresFlowRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Flow, error) {
	start := time.Now()
	q := `SELECT ` + flowColumns + ` FROM flows WHERE id = $1`

	flow, err := scanFlow(r.db.QueryRow(ctx, q, id))
	duration := time.Since(start)

	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logCriticalDBError(ctx, "get_flow_by_id", q, duration, err)
		}
		return nil, HandlePgxError("get_flow_by_id", err)
	}

	r.logSlowQuery(ctx, "get_flow_by_id", duration)
	return flow, nil
}

func (r *postgresFlowRepository) Update(ctx context.Context, flow *model.Flow, prevUpdatedAt time.Time) (*model.Flow, error) {
	start := time.Now()
	q := `
		UPDATE flows
		SET title = $2, tasks = $3, updated_at = $4
		WHERE id = $1 AND updated_at = $5
		RETURNING ` + flowColumns

	tasks, err := json.Marshal(flow.Tasks)
	if err != nil {
		return nil, WrapError("update_flow", err)
	}

	updated, err := scanFlow(r.db.QueryRow(ctx, q, flow.ID, flow.Title, tasks, flow.UpdatedAt, prevUpdatedAt))
	duration := time.Since(start)

	if errors.Is(err, pgx.ErrNoRows) {
		// either the flow is gone or someone else wrote it first
		if _, getErr := r.GetByID(ctx, flow.ID); getErr != nil {
			return nil, getErr
		}
		return nil, WrapError("update_flow", ErrConcurrentUpdate)
	}
	if err != nil {
		r.logCriticalDBError(ctx, "update_flow", q, duration, err)
		return nil, HandlePgxError("update_flow", err)
	}

	r.logSlowQuery(ctx, "update_flow", duration)
	return updated, nil
}

func (r *postgresFlowRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	q := `DELETE FROM flows WHERE id = $1`

	commandTag, err := r.db.Exec(ctx, q, id)
	duration := time.Since(start)

	if err != nil {
		r.logCriticalDBError(ctx, "delete_flow", q, duration, err)
		return HandlePgxError("delete_flow", err)
	}

	if commandTag.RowsAffected() == 0 {
		return WrapError("delete_flow", ErrFlowNotFound)
	}

	r.logSlowQuery(ctx, "delete_flow", duration)
	return nil
}

func (r *postgresFlowRepository) List(ctx context.Context) ([]*model.Flow, error) {
	start := time.Now()
	q := `SELECT ` + flowColumns + ` FROM flows ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		r.logCriticalDBError(ctx, "list_flows", q, time.Since(start), err)
		return nil, HandlePgxError("list_flows", err)
	}
	defer rows.Close()

	flows := []*model.Flow{}
	for rows.Next() {
		flow, err := scanFlow(rows)
		if err != nil {
			r.logCriticalDBError(ctx, "list_flows_scan", "", time.Since(start), err)
			return nil, HandlePgxError("list_flows_scan", err)
		}
		flows = append(flows, flow)
	}

	duration := time.Since(start)
	if err = rows.Err(); err != nil {
		r.logCriticalDBError(ctx, "list_flows_iteration", "", duration, err)
		return nil, HandlePgxError("list_flows_iteration", err)
	}

	r.logSlowQuery(ctx, "list_flows", duration)
	return flows, nil
}

// HealthCheck runs a trivial query and reports slow round trips.
func (r *postgresFlowRepository) HealthCheck(ctx context.Context) error {
	start := time.Now()

	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	duration := time.Since(start)

	if err != nil {
		logger.LogDatabaseQuery(ctx, "SELECT 1", nil, duration, err)
		slog.ErrorContext(ctx, "Health check failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
			slog.String("type", "health_check_failure"),
		)
		return HandlePgxError("health_check", err)
	}

	logger.LogSlowOperation(ctx, "health_check", duration, 100*time.Millisecond)
	return nil
}

func scanFlow(row pgx.Row) (*model.Flow, error) {
	var (
		flow  model.Flow
		tasks []byte
	)
	if err := row.Scan(&flow.ID, &flow.Title, &tasks, &flow.CreatedAt, &flow.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tasks, &flow.Tasks); err != nil {
		return nil, WrapError("decode_tasks", errors.Join(ErrInvalidData, err))
	}
	if flow.Tasks == nil {
		flow.Tasks = []model.Task{}
	}
	return &flow, nil
}

func (r *postgresFlowRepository) logCriticalDBError(ctx context.Context, operation, query string, duration time.Duration, err error) {
	logger.LogDatabaseQuery(ctx, query, nil, duration, err)

	slog.ErrorContext(ctx, "Critical database error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
	)
}

func (r *postgresFlowRepository) logSlowQuery(ctx context.Context, operation string, duration time.Duration) {
	logger.LogSlowOperation(ctx, operation, duration, 500*time.Millisecond)
}
