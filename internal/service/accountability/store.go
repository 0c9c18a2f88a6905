// Package accountability implements the reconciliation engine: it scans a
// workspace for missing process artifacts (standups, hypotheses, sprint
// starts, backlogs, reviews, retros), materializes exactly one tracked
// remediation issue per finding, and resolves those issues once the
// underlying artifact appears.
package accountability

import (
	"context"
	"time"

	"github.com/cadencehq/cadence/internal/model"
)

// The engine reads sprints, projects and documents and writes only
// remediation issues. It consumes these narrow store interfaces so the
// Postgres repositories stay swappable for in-memory fakes in tests.

type WorkspaceStore interface {
	// Get returns nil, nil when the workspace does not exist; "no
	// workspace" is treated as "nothing to check".
	Get(ctx context.Context, id int64) (*model.Workspace, error)
}

type SprintStore interface {
	// OwnedStarted returns non-deleted, non-archived sprints owned by
	// ownerID whose sprint number is at most maxSprintNumber (i.e. whose
	// computed start date is on or before today).
	OwnedStarted(ctx context.Context, workspaceID, ownerID int64, maxSprintNumber int) ([]model.Sprint, error)

	// WithAssignedIssues returns non-deleted, non-archived sprints with the
	// given sprint number in which userID has at least one non-deleted
	// issue assigned.
	WithAssignedIssues(ctx context.Context, workspaceID, userID int64, sprintNumber int) ([]model.Sprint, error)
}

type ProjectStore interface {
	// OwnedActive returns non-deleted, non-archived projects owned by ownerID.
	OwnedActive(ctx context.Context, workspaceID, ownerID int64) ([]model.Project, error)
}

type DocumentStore interface {
	// ExistsForSprint reports whether any document of kind is parented to
	// the sprint.
	ExistsForSprint(ctx context.Context, kind string, sprintID int64) (bool, error)

	// ExistsForAuthorOn reports whether a document of kind, parented to the
	// sprint and authored by authorID, was created on the given UTC day.
	ExistsForAuthorOn(ctx context.Context, kind string, sprintID, authorID int64, day time.Time) (bool, error)
}

type IssueStore interface {
	// FindOpenRemediation returns the open remediation issue for
	// (workspace, target, type), or nil when none exists.
	FindOpenRemediation(ctx context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (*model.Issue, error)

	// CreateRemediation atomically find-or-creates a remediation issue.
	// The implementation must serialize concurrent callers per workspace,
	// re-check uniqueness under that lock, and allocate the next ticket
	// number in the same transaction as the insert. The bool is true when
	// this call inserted the row.
	CreateRemediation(ctx context.Context, issue *model.Issue) (*model.Issue, bool, error)

	// ResolveRemediation flips the open remediation issue for
	// (workspace, target, type) to done, stamping completion time. No-op
	// when none exists; the bool reports whether a row was updated.
	ResolveRemediation(ctx context.Context, workspaceID, targetID int64, typ model.AccountabilityType) (bool, error)

	// ProjectIssueStats returns the number of non-deleted issues in the
	// project and how many of those are open (not done/cancelled).
	ProjectIssueStats(ctx context.Context, projectID int64) (total int, open int, err error)
}
