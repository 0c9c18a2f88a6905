package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cadencehq/cadence/pkg/mq"
)

// Dispatcher drains pending outbox events into the MQ exchange.
type Dispatcher struct {
	repo       *Repository
	publisher  *mq.Publisher
	logger     *zap.Logger
	maxRetries int
	interval   time.Duration
	batchSize  int
}

func NewDispatcher(repo *Repository, publisher *mq.Publisher, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		maxRetries: 5,
		interval:   time.Second,
		batchSize:  100,
	}
}

// Start runs the dispatch loop until ctx is cancelled. Run in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("Starting outbox dispatcher",
		zap.Int("max_retries", d.maxRetries),
		zap.Duration("interval", d.interval),
		zap.Int("batch_size", d.batchSize),
	)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.processPendingEvents(ctx)
		}
	}
}

func (d *Dispatcher) processPendingEvents(ctx context.Context) {
	events, err := d.repo.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("Failed to get pending events", zap.Error(err))
		return
	}

	for _, e := range events {
		if err := d.publisher.Publish(e.RoutingKey, e.Payload); err != nil {
			d.logger.Error("Failed to publish outbox event",
				zap.Int64("event_id", e.ID),
				zap.String("routing_key", e.RoutingKey),
				zap.Error(err),
			)
			if markErr := d.repo.MarkAsFailed(ctx, e.ID, d.maxRetries); markErr != nil {
				d.logger.Error("Failed to mark event as failed", zap.Error(markErr))
			}
			continue
		}

		if err := d.repo.MarkAsSent(ctx, e.ID); err != nil {
			d.logger.Error("Failed to mark event as sent",
				zap.Int64("event_id", e.ID),
				zap.Error(err),
			)
			continue
		}

		d.logger.Debug("Dispatched outbox event",
			zap.Int64("event_id", e.ID),
			zap.String("routing_key", e.RoutingKey),
		)
	}
}
