package accountability

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/calendar"
	"github.com/cadencehq/cadence/internal/model"
	"github.com/cadencehq/cadence/pkg/metrics"
)

type Service struct {
	workspaces WorkspaceStore
	sprints    SprintStore
	projects   ProjectStore
	documents  DocumentStore
	issues     IssueStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	workspaces WorkspaceStore,
	sprints SprintStore,
	projects ProjectStore,
	documents DocumentStore,
	issues IssueStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		workspaces: workspaces,
		sprints:    sprints,
		projects:   projects,
		documents:  documents,
		issues:     issues,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the engine's notion of "now". Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CheckMissing runs all rule evaluators for (userID, workspaceID) and
// returns the findings. Read-only, side-effect-free.
func (s *Service) CheckMissing(ctx context.Context, userID, workspaceID int64) ([]model.MissingItem, error) {
	ec, ok, err := s.buildContext(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.evaluate(ctx, ec)
}

// CheckAndCreate runs all rule evaluators and materializes a remediation
// issue for each finding, partitioning the results into issues created by
// this run and issues already open from an earlier run.
func (s *Service) CheckAndCreate(ctx context.Context, userID, workspaceID int64) (*model.ReconciliationReport, error) {
	started := time.Now()

	ec, ok, err := s.buildContext(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &model.ReconciliationReport{}, nil
	}

	items, err := s.evaluate(ctx, ec)
	if err != nil {
		return nil, err
	}

	report := &model.ReconciliationReport{MissingItems: items}
	for _, item := range items {
		issue, created, err := s.materialize(ctx, ec, item)
		if err != nil {
			return nil, err
		}
		if created {
			report.CreatedIssues = append(report.CreatedIssues, *issue)
		} else {
			report.ExistingIssues = append(report.ExistingIssues, *issue)
		}
	}

	metrics.RecordReconciliation("run", time.Since(started))
	s.logger.Info("Reconciliation completed",
		zap.Int64("user_id", userID),
		zap.Int64("workspace_id", workspaceID),
		zap.Int("missing", len(report.MissingItems)),
		zap.Int("created", len(report.CreatedIssues)),
		zap.Int("existing", len(report.ExistingIssues)),
	)
	return report, nil
}

// AutoComplete resolves the open remediation issue for (workspace, target,
// type), if any. Called by every artifact-producing code path: posting a
// standup, submitting a review, writing a hypothesis, starting a sprint,
// adding the first issue to a sprint, recording a retro.
func (s *Service) AutoComplete(ctx context.Context, targetID int64, typ model.AccountabilityType, workspaceID int64) error {
	resolved, err := s.issues.ResolveRemediation(ctx, workspaceID, targetID, typ)
	if err != nil {
		return err
	}
	if resolved {
		metrics.RemediationResolved.WithLabelValues(string(typ)).Inc()
		s.logger.Info("Remediation issue auto-resolved",
			zap.Int64("workspace_id", workspaceID),
			zap.Int64("target_id", targetID),
			zap.String("type", string(typ)),
		)
	}
	return nil
}

// buildContext loads the workspace and derives today's sprint index. The
// second return is false when the workspace does not exist, which is
// equivalent to "nothing to check".
func (s *Service) buildContext(ctx context.Context, userID, workspaceID int64) (evalContext, bool, error) {
	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return evalContext{}, false, err
	}
	if ws == nil {
		return evalContext{}, false, nil
	}

	today := calendar.DateOf(s.now())
	return evalContext{
		userID:       userID,
		workspaceID:  workspaceID,
		today:        today,
		workspace:    ws,
		sprintNumber: calendar.CurrentSprintNumber(today, ws.SprintStartDate, ws.SprintLengthDays),
	}, true, nil
}

// evaluate runs the rules in order and concatenates their findings. The
// first evaluator error fails the whole run; a half-run reconciliation
// would report a false "all clear" for the skipped rules.
func (s *Service) evaluate(ctx context.Context, ec evalContext) ([]model.MissingItem, error) {
	var all []model.MissingItem
	for _, rule := range s.rules() {
		items, err := rule(ctx, ec)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			metrics.MissingItemsFound.WithLabelValues(string(item.Type)).Inc()
		}
		all = append(all, items...)
	}
	return all, nil
}
