package model

import "time"

const (
	DocStandup      = "standup"
	DocSprintReview = "sprint_review"
	DocProjectRetro = "project_retro"
)

// Document is a process artifact (standup, sprint review, project retro)
// parented to a sprint or project. Its mere existence for the right author
// and day (or the right target) is what the accountability rules check.
type Document struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace_id"`
	AuthorID    int64     `json:"author_id"`
	Kind        string    `json:"kind"` // standup / sprint_review / project_retro
	SprintID    *int64    `json:"sprint_id"`
	ProjectID   *int64    `json:"project_id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}
