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

const projectColumns = `
	id, workspace_id, owner_id, name, hypothesis, hypothesis_validated,
	deleted, archived, created_at, updated_at
`

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Get(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	err := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id).Scan(
		&p.ID,
		&p.WorkspaceID,
		&p.OwnerID,
		&p.Name,
		&p.Hypothesis,
		&p.HypothesisValidated,
		&p.Deleted,
		&p.Archived,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

// OwnedActive returns non-deleted, non-archived projects owned by ownerID.
func (r *ProjectRepository) OwnedActive(ctx context.Context, workspaceID, ownerID int64) ([]model.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE workspace_id = $1
		AND owner_id = $2
		AND deleted = FALSE
		AND archived = FALSE
		ORDER BY id
	`, workspaceID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		err := rows.Scan(
			&p.ID,
			&p.WorkspaceID,
			&p.OwnerID,
			&p.Name,
			&p.Hypothesis,
			&p.HypothesisValidated,
			&p.Deleted,
			&p.Archived,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) SetHypothesis(ctx context.Context, projectID int64, hypothesis string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE projects SET hypothesis = $1, updated_at = NOW()
		WHERE id = $2 AND deleted = FALSE
	`, hypothesis, projectID)
	if err != nil {
		return fmt.Errorf("failed to set project hypothesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d not found", projectID)
	}
	return nil
}

// MarkHypothesisValidated sets the terminal validation marker. It is never
// cleared; once set the project is exempt from retro tracking.
func (r *ProjectRepository) MarkHypothesisValidated(ctx context.Context, projectID int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE projects SET hypothesis_validated = TRUE, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE
	`, projectID)
	if err != nil {
		return fmt.Errorf("failed to mark hypothesis validated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d not found", projectID)
	}
	return nil
}
