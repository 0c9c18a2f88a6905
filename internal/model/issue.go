package model

import "time"

const (
	IssueTodo       = "todo"
	IssueInProgress = "in_progress"
	IssueDone       = "done"
	IssueCancelled  = "cancelled"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// SourceAccountability marks issues materialized by the reconciliation
// engine rather than created by a person.
const SourceAccountability = "accountability"

// Issue is a trackable unit of work. Remediation issues are the subset with
// AccountabilityTargetID/AccountabilityType set; for a given
// (workspace, target, type) at most one open remediation issue may exist.
type Issue struct {
	ID                    int64      `json:"id"`
	WorkspaceID           int64      `json:"workspace_id"`
	TicketNumber          int64      `json:"ticket_number"`
	Title                 string     `json:"title"`
	State                 string     `json:"state"` // todo / in_progress / done / cancelled
	Priority              string     `json:"priority"`
	Source                string     `json:"source"`
	AssigneeID            *int64     `json:"assignee_id"`
	SprintID              *int64     `json:"sprint_id"`
	ProjectID             *int64     `json:"project_id"`
	AccountabilityTargetID *int64    `json:"accountability_target_id"`
	AccountabilityType    *string    `json:"accountability_type"`
	DueDate               *time.Time `json:"due_date"`
	CompletedAt           *time.Time `json:"completed_at"`
	Deleted               bool       `json:"deleted"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Open reports whether the issue is in a non-terminal state.
func (i *Issue) Open() bool {
	return i.State != IssueDone && i.State != IssueCancelled
}
