package model

import "time"

const (
	SprintPlanning  = "planning"
	SprintActive    = "active"
	SprintCompleted = "completed"
)

// Sprint is a fixed-length time box. Start and end dates are not stored;
// they are derived from the workspace origin date and SprintNumber.
// IssueCount is a denormalized count of non-deleted issues in the sprint.
type Sprint struct {
	ID           int64     `json:"id"`
	WorkspaceID  int64     `json:"workspace_id"`
	OwnerID      int64     `json:"owner_id"`
	SprintNumber int       `json:"sprint_number"`
	Status       string    `json:"status"` // planning / active / completed
	Hypothesis   *string   `json:"hypothesis"`
	IssueCount   int       `json:"issue_count"`
	Deleted      bool      `json:"deleted"`
	Archived     bool      `json:"archived"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasHypothesis reports whether a non-blank hypothesis has been written.
func (s *Sprint) HasHypothesis() bool {
	return s.Hypothesis != nil && *s.Hypothesis != ""
}

// Started reports whether the owner has advanced the sprint out of planning.
// This is a manual state machine, independent of the date-derived window.
func (s *Sprint) Started() bool {
	return s.Status == SprintActive || s.Status == SprintCompleted
}
