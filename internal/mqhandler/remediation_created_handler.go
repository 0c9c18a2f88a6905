package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "github.com/cadencehq/cadence/contracts/mq"
	"github.com/cadencehq/cadence/internal/model"
	"github.com/cadencehq/cadence/internal/repository"
	"github.com/cadencehq/cadence/pkg/util"
)

// RemediationCreatedHandler turns accountability.issue.created events into
// in-app notifications for the accountable user.
type RemediationCreatedHandler struct {
	repo    *repository.NotificationRepository
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewRemediationCreatedHandler(
	repo *repository.NotificationRepository,
	deduper *util.Deduper,
	logger *zap.Logger,
) *RemediationCreatedHandler {
	return &RemediationCreatedHandler{
		repo:    repo,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *RemediationCreatedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.RemediationCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// Malformed payload is non-retryable; ack and move on.
		h.logger.Error("Failed to unmarshal remediation created payload", zap.Error(err))
		return nil
	}

	if !h.deduper.AcquireOnce(ctx, "remediation-notify", p.IssueID) {
		h.logger.Info("Duplicate remediation event skipped", zap.Int64("issue_id", p.IssueID))
		return nil
	}

	notif := &model.Notification{
		UserID:  p.AssigneeID,
		Type:    "accountability",
		Content: fmt.Sprintf("#%d %s", p.TicketNumber, p.Title),
	}
	if err := h.repo.Insert(ctx, notif); err != nil {
		h.logger.Error("Failed to insert remediation notification",
			zap.Int64("issue_id", p.IssueID),
			zap.Int64("user_id", p.AssigneeID),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("Remediation notification created",
		zap.Int64("issue_id", p.IssueID),
		zap.Int64("user_id", p.AssigneeID),
		zap.String("type", p.AccountabilityType),
	)
	return nil
}
