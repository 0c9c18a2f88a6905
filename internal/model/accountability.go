package model

import "time"

// AccountabilityType tags a remediation issue with the rule that produced it.
type AccountabilityType string

const (
	MissingStandup            AccountabilityType = "missing_standup"
	SprintHypothesisMissing   AccountabilityType = "sprint_hypothesis_missing"
	SprintNotStarted          AccountabilityType = "sprint_not_started"
	SprintNoIssues            AccountabilityType = "sprint_no_issues"
	SprintReviewMissing       AccountabilityType = "sprint_review_missing"
	ProjectHypothesisMissing  AccountabilityType = "project_hypothesis_missing"
	ProjectRetroMissing       AccountabilityType = "project_retro_missing"
)

// TargetType distinguishes what a remediation issue is about.
type TargetType string

const (
	TargetSprint  TargetType = "sprint"
	TargetProject TargetType = "project"
)

// MissingItem is one finding from a rule evaluator: a process artifact that
// should exist but does not.
type MissingItem struct {
	Type        AccountabilityType `json:"type"`
	TargetID    int64              `json:"target_id"`
	TargetTitle string             `json:"target_title"`
	TargetType  TargetType         `json:"target_type"`
	DueDate     *time.Time         `json:"due_date"`
	Message     string             `json:"message"`
}

// ReconciliationReport is the result of a side-effecting reconciliation run.
// CreatedIssues were materialized by this run; ExistingIssues were already
// open from an earlier run.
type ReconciliationReport struct {
	MissingItems   []MissingItem `json:"missing_items"`
	CreatedIssues  []Issue       `json:"created_issues"`
	ExistingIssues []Issue       `json:"existing_issues"`
}
