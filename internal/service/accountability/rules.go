package accountability

import (
	"context"
	"fmt"
	"time"

	"github.com/cadencehq/cadence/internal/calendar"
	"github.com/cadencehq/cadence/internal/model"
)

// evalContext carries the per-run inputs shared by every rule: who is being
// checked, the workspace, the normalized "today" and the sprint index it
// falls into. sprintNumber may be zero or negative when today predates the
// workspace origin; sprint-scoped rules skip in that case.
type evalContext struct {
	userID       int64
	workspaceID  int64
	today        time.Time
	workspace    *model.Workspace
	sprintNumber int
}

type ruleFunc func(ctx context.Context, ec evalContext) ([]model.MissingItem, error)

func (s *Service) rules() []ruleFunc {
	return []ruleFunc{
		s.missingStandups,
		s.sprintHypothesesMissing,
		s.sprintsNotStarted,
		s.sprintsWithoutIssues,
		s.sprintReviewsMissing,
		s.projectHypothesesMissing,
		s.projectRetrosMissing,
	}
}

func sprintTitle(sp *model.Sprint) string {
	return fmt.Sprintf("Sprint %d", sp.SprintNumber)
}

// missingStandups checks that the user posted a standup today in every
// current-index sprint where they have at least one issue assigned. The
// query is driven from the user's issues, so sprints with zero assigned
// issues for this user are never surfaced. Weekends are exempt.
func (s *Service) missingStandups(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	if !calendar.IsBusinessDay(ec.today) {
		return nil, nil
	}
	if ec.sprintNumber <= 0 {
		return nil, nil
	}

	sprints, err := s.sprints.WithAssignedIssues(ctx, ec.workspaceID, ec.userID, ec.sprintNumber)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range sprints {
		sp := &sprints[i]
		posted, err := s.documents.ExistsForAuthorOn(ctx, model.DocStandup, sp.ID, ec.userID, ec.today)
		if err != nil {
			return nil, err
		}
		if posted {
			continue
		}

		due := ec.today
		items = append(items, model.MissingItem{
			Type:        model.MissingStandup,
			TargetID:    sp.ID,
			TargetTitle: sprintTitle(sp),
			TargetType:  model.TargetSprint,
			DueDate:     &due,
			Message:     fmt.Sprintf("Post today's standup for %s", sprintTitle(sp)),
		})
	}
	return items, nil
}

// sprintHypothesesMissing flags owned, already-started sprints without a
// hypothesis. Due date is the computed sprint start.
func (s *Service) sprintHypothesesMissing(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	sprints, err := s.ownedStartedSprints(ctx, ec)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range sprints {
		sp := &sprints[i]
		if sp.HasHypothesis() {
			continue
		}

		start, _ := calendar.SprintWindow(sp.SprintNumber, ec.workspace.SprintStartDate, ec.workspace.SprintLengthDays)
		items = append(items, model.MissingItem{
			Type:        model.SprintHypothesisMissing,
			TargetID:    sp.ID,
			TargetTitle: sprintTitle(sp),
			TargetType:  model.TargetSprint,
			DueDate:     &start,
			Message:     fmt.Sprintf("Write a hypothesis for %s", sprintTitle(sp)),
		})
	}
	return items, nil
}

// sprintsNotStarted flags owned, already-started sprints whose status is
// still planning. Status is a manual state machine the owner must advance,
// independent of the date-derived window.
func (s *Service) sprintsNotStarted(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	sprints, err := s.ownedStartedSprints(ctx, ec)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range sprints {
		sp := &sprints[i]
		if sp.Started() {
			continue
		}

		start, _ := calendar.SprintWindow(sp.SprintNumber, ec.workspace.SprintStartDate, ec.workspace.SprintLengthDays)
		items = append(items, model.MissingItem{
			Type:        model.SprintNotStarted,
			TargetID:    sp.ID,
			TargetTitle: sprintTitle(sp),
			TargetType:  model.TargetSprint,
			DueDate:     &start,
			Message:     fmt.Sprintf("Start %s", sprintTitle(sp)),
		})
	}
	return items, nil
}

// sprintsWithoutIssues flags owned, already-started sprints with an empty
// backlog.
func (s *Service) sprintsWithoutIssues(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	sprints, err := s.ownedStartedSprints(ctx, ec)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range sprints {
		sp := &sprints[i]
		if sp.IssueCount > 0 {
			continue
		}

		start, _ := calendar.SprintWindow(sp.SprintNumber, ec.workspace.SprintStartDate, ec.workspace.SprintLengthDays)
		items = append(items, model.MissingItem{
			Type:        model.SprintNoIssues,
			TargetID:    sp.ID,
			TargetTitle: sprintTitle(sp),
			TargetType:  model.TargetSprint,
			DueDate:     &start,
			Message:     fmt.Sprintf("Add issues to %s", sprintTitle(sp)),
		})
	}
	return items, nil
}

// sprintReviewsMissing flags owned sprints that ended before today and have
// no review document, once the one-business-day grace period after sprint
// end has passed.
func (s *Service) sprintReviewsMissing(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	sprints, err := s.ownedStartedSprints(ctx, ec)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range sprints {
		sp := &sprints[i]

		_, end := calendar.SprintWindow(sp.SprintNumber, ec.workspace.SprintStartDate, ec.workspace.SprintLengthDays)
		if !end.Before(ec.today) {
			continue
		}

		deadline := calendar.AddBusinessDays(end, 1)
		if !ec.today.After(deadline) {
			continue
		}

		reviewed, err := s.documents.ExistsForSprint(ctx, model.DocSprintReview, sp.ID)
		if err != nil {
			return nil, err
		}
		if reviewed {
			continue
		}

		items = append(items, model.MissingItem{
			Type:        model.SprintReviewMissing,
			TargetID:    sp.ID,
			TargetTitle: sprintTitle(sp),
			TargetType:  model.TargetSprint,
			DueDate:     &deadline,
			Message:     fmt.Sprintf("Submit the review for %s", sprintTitle(sp)),
		})
	}
	return items, nil
}

// projectHypothesesMissing flags owned active projects without a hypothesis.
// Projects are not calendar-scoped, so there is no due date.
func (s *Service) projectHypothesesMissing(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	projects, err := s.projects.OwnedActive(ctx, ec.workspaceID, ec.userID)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range projects {
		p := &projects[i]
		if p.HasHypothesis() {
			continue
		}

		items = append(items, model.MissingItem{
			Type:        model.ProjectHypothesisMissing,
			TargetID:    p.ID,
			TargetTitle: p.Name,
			TargetType:  model.TargetProject,
			Message:     fmt.Sprintf("Write a hypothesis for project %q", p.Name),
		})
	}
	return items, nil
}

// projectRetrosMissing flags owned active projects whose hypothesis has not
// been validated, that have at least one issue, and where every issue is
// terminal (done or cancelled). HypothesisValidated is a terminal marker:
// once set, the project is permanently exempt.
func (s *Service) projectRetrosMissing(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	projects, err := s.projects.OwnedActive(ctx, ec.workspaceID, ec.userID)
	if err != nil {
		return nil, err
	}

	var items []model.MissingItem
	for i := range projects {
		p := &projects[i]
		if p.HypothesisValidated {
			continue
		}

		total, open, err := s.issues.ProjectIssueStats(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if total == 0 || open > 0 {
			continue
		}

		items = append(items, model.MissingItem{
			Type:        model.ProjectRetroMissing,
			TargetID:    p.ID,
			TargetTitle: p.Name,
			TargetType:  model.TargetProject,
			Message:     fmt.Sprintf("All work on project %q is finished; write a retro and validate the hypothesis", p.Name),
		})
	}
	return items, nil
}

// ownedStartedSprints is the shared scope for the sprint hygiene rules:
// sprints the user owns whose computed start date is on or before today.
func (s *Service) ownedStartedSprints(ctx context.Context, ec evalContext) ([]model.Sprint, error) {
	if ec.sprintNumber <= 0 {
		return nil, nil
	}
	return s.sprints.OwnedStarted(ctx, ec.workspaceID, ec.userID, ec.sprintNumber)
}
