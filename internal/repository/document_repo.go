package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/model"
)

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

func (r *DocumentRepository) Insert(ctx context.Context, d *model.Document) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (workspace_id, author_id, kind, sprint_id, project_id, body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		d.WorkspaceID,
		d.AuthorID,
		d.Kind,
		d.SprintID,
		d.ProjectID,
		d.Body,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert document: %w", err)
	}

	r.logger.Debug("Document inserted",
		zap.Int64("id", id),
		zap.String("kind", d.Kind),
		zap.Int64("author_id", d.AuthorID),
	)
	return id, nil
}

// ExistsForSprint reports whether any document of kind is parented to the
// sprint.
func (r *DocumentRepository) ExistsForSprint(ctx context.Context, kind string, sprintID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM documents WHERE kind = $1 AND sprint_id = $2
		)
	`, kind, sprintID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return exists, nil
}

// ExistsForAuthorOn reports whether a document of kind, parented to the
// sprint and authored by authorID, was created on the given UTC day.
func (r *DocumentRepository) ExistsForAuthorOn(ctx context.Context, kind string, sprintID, authorID int64, day time.Time) (bool, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE kind = $1 AND sprint_id = $2 AND author_id = $3
			AND created_at >= $4 AND created_at < $5
		)
	`, kind, sprintID, authorID, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check document existence: %w", err)
	}
	return exists, nil
}
