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

const sprintColumns = `
	id, workspace_id, owner_id, sprint_number, status, hypothesis,
	issue_count, deleted, archived, created_at, updated_at
`

type SprintRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSprintRepository(db *pgxpool.Pool, logger *zap.Logger) *SprintRepository {
	return &SprintRepository{db: db, logger: logger}
}

func scanSprints(rows pgx.Rows) ([]model.Sprint, error) {
	defer rows.Close()

	var sprints []model.Sprint
	for rows.Next() {
		var s model.Sprint
		err := rows.Scan(
			&s.ID,
			&s.WorkspaceID,
			&s.OwnerID,
			&s.SprintNumber,
			&s.Status,
			&s.Hypothesis,
			&s.IssueCount,
			&s.Deleted,
			&s.Archived,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint: %w", err)
		}
		sprints = append(sprints, s)
	}
	return sprints, rows.Err()
}

func (r *SprintRepository) Get(ctx context.Context, id int64) (*model.Sprint, error) {
	row := r.db.QueryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, id)

	var s model.Sprint
	err := row.Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.OwnerID,
		&s.SprintNumber,
		&s.Status,
		&s.Hypothesis,
		&s.IssueCount,
		&s.Deleted,
		&s.Archived,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sprint: %w", err)
	}
	return &s, nil
}

// OwnedStarted returns non-deleted, non-archived sprints owned by ownerID
// whose sprint number is at most maxSprintNumber.
func (r *SprintRepository) OwnedStarted(ctx context.Context, workspaceID, ownerID int64, maxSprintNumber int) ([]model.Sprint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sprintColumns+`
		FROM sprints
		WHERE workspace_id = $1
		AND owner_id = $2
		AND sprint_number <= $3
		AND deleted = FALSE
		AND archived = FALSE
		ORDER BY sprint_number
	`, workspaceID, ownerID, maxSprintNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query owned sprints: %w", err)
	}
	return scanSprints(rows)
}

// WithAssignedIssues returns sprints with the given sprint number in which
// userID has at least one non-deleted issue assigned. Driving the query
// from the user's issues means sprints with zero assigned issues for this
// user never appear.
func (r *SprintRepository) WithAssignedIssues(ctx context.Context, workspaceID, userID int64, sprintNumber int) ([]model.Sprint, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT s.id, s.workspace_id, s.owner_id, s.sprint_number, s.status,
		       s.hypothesis, s.issue_count, s.deleted, s.archived, s.created_at, s.updated_at
		FROM sprints s
		JOIN issues i ON i.sprint_id = s.id AND i.deleted = FALSE
		WHERE s.workspace_id = $1
		AND i.assignee_id = $2
		AND s.sprint_number = $3
		AND s.deleted = FALSE
		AND s.archived = FALSE
		ORDER BY s.id
	`, workspaceID, userID, sprintNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprints with assigned issues: %w", err)
	}
	return scanSprints(rows)
}

func (r *SprintRepository) SetHypothesis(ctx context.Context, sprintID int64, hypothesis string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sprints SET hypothesis = $1, updated_at = NOW()
		WHERE id = $2 AND deleted = FALSE
	`, hypothesis, sprintID)
	if err != nil {
		return fmt.Errorf("failed to set sprint hypothesis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sprint %d not found", sprintID)
	}
	return nil
}

func (r *SprintRepository) SetStatus(ctx context.Context, sprintID int64, status string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE sprints SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted = FALSE
	`, status, sprintID)
	if err != nil {
		return fmt.Errorf("failed to set sprint status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sprint %d not found", sprintID)
	}
	return nil
}
