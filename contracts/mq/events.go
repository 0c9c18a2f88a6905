package mq

// Routing keys on the cadence.events exchange.
const (
	EventRemediationCreated = "accountability.issue.created"

	EventStandupPosted         = "standup.posted"
	EventSprintReviewSubmitted = "sprint.review.submitted"
	EventSprintStarted         = "sprint.started"
	EventSprintHypothesisSet   = "sprint.hypothesis.set"
	EventProjectHypothesisSet  = "project.hypothesis.set"
	EventProjectRetroRecorded  = "project.retro.recorded"
	EventIssueAddedToSprint    = "sprint.issue.added"
)

// RemediationCreatedPayload rides EventRemediationCreated. Emitted through
// the outbox in the same transaction that inserted the issue.
type RemediationCreatedPayload struct {
	IssueID            int64  `json:"issue_id"`
	WorkspaceID        int64  `json:"workspace_id"`
	TicketNumber       int64  `json:"ticket_number"`
	AssigneeID         int64  `json:"assignee_id"`
	AccountabilityType string `json:"accountability_type"`
	Title              string `json:"title"`
}

// ArtifactPayload rides the artifact-produced events (standup posted,
// review submitted, ...).
type ArtifactPayload struct {
	WorkspaceID int64  `json:"workspace_id"`
	UserID      int64  `json:"user_id"`
	TargetID    int64  `json:"target_id"`
	TargetType  string `json:"target_type"`
}
