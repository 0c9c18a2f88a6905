// Package workflow implements the artifact-producing operations: posting
// standups, submitting reviews, writing hypotheses, starting sprints,
// populating backlogs and recording retros. Every operation pushes its
// completion into the accountability engine so remediation issues do not
// linger until the next reconciliation run.
package workflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "github.com/cadencehq/cadence/contracts/mq"
	"github.com/cadencehq/cadence/internal/model"
	"github.com/cadencehq/cadence/internal/repository"
	"github.com/cadencehq/cadence/internal/service/accountability"
	"github.com/cadencehq/cadence/pkg/mq"
)

type Service struct {
	sprints   *repository.SprintRepository
	projects  *repository.ProjectRepository
	documents *repository.DocumentRepository
	issues    *repository.IssueRepository
	engine    *accountability.Service
	publisher *mq.Publisher
	logger    *zap.Logger
}

func NewService(
	sprints *repository.SprintRepository,
	projects *repository.ProjectRepository,
	documents *repository.DocumentRepository,
	issues *repository.IssueRepository,
	engine *accountability.Service,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		sprints:   sprints,
		projects:  projects,
		documents: documents,
		issues:    issues,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
	}
}

// PostStandup creates a standup document for the user on the sprint and
// resolves any open missing-standup remediation issue.
func (s *Service) PostStandup(ctx context.Context, userID, sprintID int64, body string) (int64, error) {
	sprint, err := s.sprints.Get(ctx, sprintID)
	if err != nil {
		return 0, err
	}
	if sprint == nil || sprint.Deleted {
		return 0, fmt.Errorf("sprint %d not found", sprintID)
	}

	doc := &model.Document{
		WorkspaceID: sprint.WorkspaceID,
		AuthorID:    userID,
		Kind:        model.DocStandup,
		SprintID:    &sprintID,
		Body:        body,
	}
	id, err := s.documents.Insert(ctx, doc)
	if err != nil {
		return 0, err
	}

	if err := s.engine.AutoComplete(ctx, sprintID, model.MissingStandup, sprint.WorkspaceID); err != nil {
		return 0, err
	}

	s.publish(mqcontracts.EventStandupPosted, sprint.WorkspaceID, userID, sprintID, model.TargetSprint)
	return id, nil
}

// SubmitSprintReview creates a sprint review document and resolves any open
// review-missing remediation issue.
func (s *Service) SubmitSprintReview(ctx context.Context, userID, sprintID int64, body string) (int64, error) {
	sprint, err := s.sprints.Get(ctx, sprintID)
	if err != nil {
		return 0, err
	}
	if sprint == nil || sprint.Deleted {
		return 0, fmt.Errorf("sprint %d not found", sprintID)
	}

	doc := &model.Document{
		WorkspaceID: sprint.WorkspaceID,
		AuthorID:    userID,
		Kind:        model.DocSprintReview,
		SprintID:    &sprintID,
		Body:        body,
	}
	id, err := s.documents.Insert(ctx, doc)
	if err != nil {
		return 0, err
	}

	if err := s.engine.AutoComplete(ctx, sprintID, model.SprintReviewMissing, sprint.WorkspaceID); err != nil {
		return 0, err
	}

	s.publish(mqcontracts.EventSprintReviewSubmitted, sprint.WorkspaceID, userID, sprintID, model.TargetSprint)
	return id, nil
}

// SetSprintHypothesis writes the sprint hypothesis and resolves any open
// hypothesis-missing remediation issue.
func (s *Service) SetSprintHypothesis(ctx context.Context, userID, sprintID int64, hypothesis string) error {
	sprint, err := s.sprints.Get(ctx, sprintID)
	if err != nil {
		return err
	}
	if sprint == nil || sprint.Deleted {
		return fmt.Errorf("sprint %d not found", sprintID)
	}

	if err := s.sprints.SetHypothesis(ctx, sprintID, hypothesis); err != nil {
		return err
	}

	if hypothesis != "" {
		if err := s.engine.AutoComplete(ctx, sprintID, model.SprintHypothesisMissing, sprint.WorkspaceID); err != nil {
			return err
		}
	}

	s.publish(mqcontracts.EventSprintHypothesisSet, sprint.WorkspaceID, userID, sprintID, model.TargetSprint)
	return nil
}

// StartSprint advances the sprint status to active and resolves any open
// not-started remediation issue.
func (s *Service) StartSprint(ctx context.Context, userID, sprintID int64) error {
	sprint, err := s.sprints.Get(ctx, sprintID)
	if err != nil {
		return err
	}
	if sprint == nil || sprint.Deleted {
		return fmt.Errorf("sprint %d not found", sprintID)
	}

	if err := s.sprints.SetStatus(ctx, sprintID, model.SprintActive); err != nil {
		return err
	}

	if err := s.engine.AutoComplete(ctx, sprintID, model.SprintNotStarted, sprint.WorkspaceID); err != nil {
		return err
	}

	s.publish(mqcontracts.EventSprintStarted, sprint.WorkspaceID, userID, sprintID, model.TargetSprint)
	return nil
}

// AddIssueToSprint moves an issue into a sprint. The first issue added
// resolves any open empty-backlog remediation issue.
func (s *Service) AddIssueToSprint(ctx context.Context, userID, issueID, sprintID int64) error {
	sprint, err := s.sprints.Get(ctx, sprintID)
	if err != nil {
		return err
	}
	if sprint == nil || sprint.Deleted {
		return fmt.Errorf("sprint %d not found", sprintID)
	}

	count, err := s.issues.AttachToSprint(ctx, issueID, sprintID)
	if err != nil {
		return err
	}

	if count == 1 {
		if err := s.engine.AutoComplete(ctx, sprintID, model.SprintNoIssues, sprint.WorkspaceID); err != nil {
			return err
		}
	}

	s.publish(mqcontracts.EventIssueAddedToSprint, sprint.WorkspaceID, userID, sprintID, model.TargetSprint)
	return nil
}

// SetProjectHypothesis writes the project hypothesis and resolves any open
// hypothesis-missing remediation issue.
func (s *Service) SetProjectHypothesis(ctx context.Context, userID, projectID int64, hypothesis string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil || project.Deleted {
		return fmt.Errorf("project %d not found", projectID)
	}

	if err := s.projects.SetHypothesis(ctx, projectID, hypothesis); err != nil {
		return err
	}

	if hypothesis != "" {
		if err := s.engine.AutoComplete(ctx, projectID, model.ProjectHypothesisMissing, project.WorkspaceID); err != nil {
			return err
		}
	}

	s.publish(mqcontracts.EventProjectHypothesisSet, project.WorkspaceID, userID, projectID, model.TargetProject)
	return nil
}

// RecordProjectRetro writes a retro document, marks the project hypothesis
// validated (terminal) and resolves any open retro-missing remediation
// issue.
func (s *Service) RecordProjectRetro(ctx context.Context, userID, projectID int64, body string) (int64, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if project == nil || project.Deleted {
		return 0, fmt.Errorf("project %d not found", projectID)
	}

	doc := &model.Document{
		WorkspaceID: project.WorkspaceID,
		AuthorID:    userID,
		Kind:        model.DocProjectRetro,
		ProjectID:   &projectID,
		Body:        body,
	}
	id, err := s.documents.Insert(ctx, doc)
	if err != nil {
		return 0, err
	}

	if err := s.projects.MarkHypothesisValidated(ctx, projectID); err != nil {
		return 0, err
	}

	if err := s.engine.AutoComplete(ctx, projectID, model.ProjectRetroMissing, project.WorkspaceID); err != nil {
		return 0, err
	}

	s.publish(mqcontracts.EventProjectRetroRecorded, project.WorkspaceID, userID, projectID, model.TargetProject)
	return id, nil
}

// publish emits a best-effort artifact event. Event delivery is
// advisory; the artifact write and auto-resolution already committed.
func (s *Service) publish(routingKey string, workspaceID, userID, targetID int64, targetType model.TargetType) {
	payload := mqcontracts.ArtifactPayload{
		WorkspaceID: workspaceID,
		UserID:      userID,
		TargetID:    targetID,
		TargetType:  string(targetType),
	}
	if err := s.publisher.Publish(routingKey, payload); err != nil {
		s.logger.Error("Failed to publish artifact event",
			zap.String("routing_key", routingKey),
			zap.Int64("target_id", targetID),
			zap.Error(err),
		)
	}
}
