package accountability

import (
	"context"

	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/model"
	"github.com/cadencehq/cadence/pkg/metrics"
)

// materialize find-or-creates the remediation issue for one finding.
//
// The fast path is a plain lookup with no lock. On the create path the
// store serializes concurrent callers per workspace and re-checks
// uniqueness under that lock, so two racing reconciliations converge on
// the same row: one observes created=true, the other created=false.
func (s *Service) materialize(ctx context.Context, ec evalContext, item model.MissingItem) (*model.Issue, bool, error) {
	existing, err := s.issues.FindOpenRemediation(ctx, ec.workspaceID, item.TargetID, item.Type)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	typ := string(item.Type)
	issue := &model.Issue{
		WorkspaceID:            ec.workspaceID,
		Title:                  item.Message,
		State:                  model.IssueTodo,
		Priority:               model.PriorityHigh,
		Source:                 model.SourceAccountability,
		AssigneeID:             &ec.userID,
		AccountabilityTargetID: &item.TargetID,
		AccountabilityType:     &typ,
		DueDate:                item.DueDate,
	}

	created, wasCreated, err := s.issues.CreateRemediation(ctx, issue)
	if err != nil {
		return nil, false, err
	}

	if wasCreated {
		metrics.RemediationCreated.WithLabelValues(typ).Inc()
		s.logger.Info("Remediation issue created",
			zap.Int64("workspace_id", ec.workspaceID),
			zap.Int64("target_id", item.TargetID),
			zap.String("type", typ),
			zap.Int64("ticket_number", created.TicketNumber),
		)
	}
	return created, wasCreated, nil
}
