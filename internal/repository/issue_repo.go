package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	mqcontracts "github.com/cadencehq/cadence/contracts/mq"
	"github.com/cadencehq/cadence/internal/model"
	"github.com/cadencehq/cadence/pkg/metrics"
	"github.com/cadencehq/cadence/pkg/outbox"
)

const issueColumns = `
	id, workspace_id, ticket_number, title, state, priority, source,
	assignee_id, sprint_id, project_id, accountability_target_id,
	accountability_type, due_date, completed_at, deleted, created_at, updated_at
`

type IssueRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewIssueRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *IssueRepository {
	return &IssueRepository{
		db:     db,
		outbox: outboxRepo,
		logger: logger,
	}
}

func scanIssue(row pgx.Row) (*model.Issue, error) {
	var i model.Issue
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.TicketNumber,
		&i.Title,
		&i.State,
		&i.Priority,
		&i.Source,
		&i.AssigneeID,
		&i.SprintID,
		&i.ProjectID,
		&i.AccountabilityTargetID,
		&i.AccountabilityType,
		&i.DueDate,
		&i.CompletedAt,
		&i.Deleted,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// FindOpenRemediation returns the open remediation issue for
// (workspace, target, type), or nil when none exists.
func (r *IssueRepository) FindOpenRemediation(ctx context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (*model.Issue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM issues
		WHERE workspace_id = $1
		AND accountability_target_id = $2
		AND accountability_type = $3
		AND state NOT IN ('done', 'cancelled')
		AND deleted = FALSE
	`

	issue, err := scanIssue(r.db.QueryRow(ctx, query, workspaceID, targetID, string(typ)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open remediation issue: %w", err)
	}
	return issue, nil
}

// workspaceLockKey hashes a workspace ID into the advisory-lock keyspace.
// Serializes ticket allocation within one workspace without blocking others.
func workspaceLockKey(workspaceID int64) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "workspace-ticket:%d", workspaceID)
	return int64(h.Sum64())
}

// CreateRemediation atomically find-or-creates a remediation issue.
//
// The whole operation runs in one transaction: a workspace-scoped
// pg_advisory_xact_lock serializes concurrent creators, the uniqueness
// check is repeated under the lock, and the ticket number is allocated as
// max+1 by the same transaction that inserts the row. Any error rolls the
// transaction back, so a crash cannot consume a ticket without inserting
// its issue. The lock is released automatically at commit/rollback.
func (r *IssueRepository) CreateRemediation(ctx context.Context, issue *model.Issue) (*model.Issue, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockStart := time.Now()
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, workspaceLockKey(issue.WorkspaceID)); err != nil {
		return nil, false, fmt.Errorf("acquire workspace lock: %w", err)
	}
	metrics.TicketLockWait.Observe(time.Since(lockStart).Seconds())

	// Re-check under the lock: a concurrent caller may have created the
	// issue between the caller's lock-free lookup and our lock acquisition.
	existing, err := scanIssue(tx.QueryRow(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE workspace_id = $1
		AND accountability_target_id = $2
		AND accountability_type = $3
		AND state NOT IN ('done', 'cancelled')
		AND deleted = FALSE
	`, issue.WorkspaceID, issue.AccountabilityTargetID, issue.AccountabilityType))
	if err == nil {
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return nil, false, fmt.Errorf("commit tx: %w", commitErr)
		}
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("recheck open remediation issue: %w", err)
	}

	var next int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(ticket_number), 0) + 1 FROM issues WHERE workspace_id = $1
	`, issue.WorkspaceID).Scan(&next)
	if err != nil {
		return nil, false, fmt.Errorf("allocate ticket number: %w", err)
	}

	created, err := scanIssue(tx.QueryRow(ctx, `
		INSERT INTO issues (
			workspace_id, ticket_number, title, state, priority, source,
			assignee_id, accountability_target_id, accountability_type, due_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+issueColumns+`
	`,
		issue.WorkspaceID,
		next,
		issue.Title,
		issue.State,
		issue.Priority,
		issue.Source,
		issue.AssigneeID,
		issue.AccountabilityTargetID,
		issue.AccountabilityType,
		issue.DueDate,
	))
	if err != nil {
		return nil, false, fmt.Errorf("insert remediation issue: %w", err)
	}

	var assignee int64
	if created.AssigneeID != nil {
		assignee = *created.AssigneeID
	}
	payload := mqcontracts.RemediationCreatedPayload{
		IssueID:            created.ID,
		WorkspaceID:        created.WorkspaceID,
		TicketNumber:       created.TicketNumber,
		AssigneeID:         assignee,
		AccountabilityType: derefString(created.AccountabilityType),
		Title:              created.Title,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "issue", &created.ID, mqcontracts.EventRemediationCreated, payload); err != nil {
		return nil, false, fmt.Errorf("enqueue remediation event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit tx: %w", err)
	}

	r.logger.Debug("Remediation issue inserted",
		zap.Int64("workspace_id", created.WorkspaceID),
		zap.Int64("issue_id", created.ID),
		zap.Int64("ticket_number", created.TicketNumber),
	)
	return created, true, nil
}

// ResolveRemediation flips the open remediation issue for
// (workspace, target, type) to done. No-op when none exists.
func (r *IssueRepository) ResolveRemediation(ctx context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE issues
		SET state = 'done', completed_at = NOW(), updated_at = NOW()
		WHERE workspace_id = $1
		AND accountability_target_id = $2
		AND accountability_type = $3
		AND state NOT IN ('done', 'cancelled')
		AND deleted = FALSE
	`, workspaceID, targetID, string(typ))
	if err != nil {
		return false, fmt.Errorf("failed to resolve remediation issue: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ProjectIssueStats returns the non-deleted issue count for a project and
// how many of those are still open.
func (r *IssueRepository) ProjectIssueStats(ctx context.Context, projectID int64) (int, int, error) {
	var total, open int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE state NOT IN ('done', 'cancelled'))
		FROM issues
		WHERE project_id = $1 AND deleted = FALSE
	`, projectID).Scan(&total, &open)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read project issue stats: %w", err)
	}
	return total, open, nil
}

// AttachToSprint moves an issue into a sprint and bumps the sprint's
// denormalized issue count, returning the new count.
func (r *IssueRepository) AttachToSprint(ctx context.Context, issueID, sprintID int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE issues SET sprint_id = $1, updated_at = NOW()
		WHERE id = $2 AND deleted = FALSE
	`, sprintID, issueID)
	if err != nil {
		return 0, fmt.Errorf("attach issue to sprint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, fmt.Errorf("issue %d not found", issueID)
	}

	var count int
	err = tx.QueryRow(ctx, `
		UPDATE sprints SET issue_count = issue_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING issue_count
	`, sprintID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("bump sprint issue count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return count, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
