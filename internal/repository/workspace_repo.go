package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/model"
)

type WorkspaceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewWorkspaceRepository(db *pgxpool.Pool, logger *zap.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{db: db, logger: logger}
}

// Get returns nil, nil when the workspace does not exist.
func (r *WorkspaceRepository) Get(ctx context.Context, id int64) (*model.Workspace, error) {
	var w model.Workspace
	err := r.db.QueryRow(ctx, `
		SELECT id, name, sprint_start_date, sprint_length_days, created_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &w.SprintStartDate, &w.SprintLengthDays, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return &w, nil
}

// List returns all workspaces; used by the reconciler sweep.
func (r *WorkspaceRepository) List(ctx context.Context) ([]model.Workspace, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, sprint_start_date, sprint_length_days, created_at
		FROM workspaces
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []model.Workspace
	for rows.Next() {
		var w model.Workspace
		if err := rows.Scan(&w.ID, &w.Name, &w.SprintStartDate, &w.SprintLengthDays, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

// MemberIDs returns the user IDs belonging to a workspace.
func (r *WorkspaceRepository) MemberIDs(ctx context.Context, workspaceID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM workspace_members WHERE workspace_id = $1 ORDER BY user_id
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
