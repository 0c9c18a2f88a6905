package model

import "time"

// Project is a longer-lived unit of work with an accountable owner.
// HypothesisValidated is terminal: once set it permanently exempts the
// project from retro tracking.
type Project struct {
	ID                  int64     `json:"id"`
	WorkspaceID         int64     `json:"workspace_id"`
	OwnerID             int64     `json:"owner_id"`
	Name                string    `json:"name"`
	Hypothesis          *string   `json:"hypothesis"`
	HypothesisValidated bool      `json:"hypothesis_validated"`
	Deleted             bool      `json:"deleted"`
	Archived            bool      `json:"archived"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasHypothesis reports whether a non-blank hypothesis has been written.
func (p *Project) HasHypothesis() bool {
	return p.Hypothesis != nil && *p.Hypothesis != ""
}
