package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	mqcontracts "github.com/cadencehq/cadence/contracts/mq"
	"github.com/cadencehq/cadence/internal/mqhandler"
	"github.com/cadencehq/cadence/internal/repository"
	"github.com/cadencehq/cadence/internal/service/accountability"
	"github.com/cadencehq/cadence/pkg/config"
	"github.com/cadencehq/cadence/pkg/db"
	"github.com/cadencehq/cadence/pkg/logger"
	"github.com/cadencehq/cadence/pkg/mq"
	"github.com/cadencehq/cadence/pkg/outbox"
	"github.com/cadencehq/cadence/pkg/redis"
	"github.com/cadencehq/cadence/pkg/util"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting cadence reconciler",
		zap.String("db_host", cfg.DB.Host),
		zap.Duration("interval", cfg.Reconcile.Interval),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	rdb := redis.NewClient(cfg.Redis)
	defer rdb.Close()

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	workspaceRepo := repository.NewWorkspaceRepository(dbConn, log)
	sprintRepo := repository.NewSprintRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	documentRepo := repository.NewDocumentRepository(dbConn, log)
	issueRepo := repository.NewIssueRepository(dbConn, outboxRepo, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	engine := accountability.NewService(workspaceRepo, sprintRepo, projectRepo, documentRepo, issueRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Outbox dispatcher drains remediation events into the exchange.
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(ctx)

	// Consumer turns remediation events into notifications.
	deduper := util.NewDeduper(rdb, 24*time.Hour)
	remediationHandler := mqhandler.NewRemediationCreatedHandler(notificationRepo, deduper, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, "reconciler.remediation_created", mqcontracts.EventRemediationCreated, log)
	if err != nil {
		log.Fatal("Failed to init MQ consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(remediationHandler.Handle)
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Error("Consumer stopped", zap.Error(err))
		}
	}()

	// Periodic sweep: reconcile every member of every workspace.
	go func() {
		ticker := time.NewTicker(cfg.Reconcile.Interval)
		defer ticker.Stop()

		sweep(ctx, engine, workspaceRepo, log)

		for {
			select {
			case <-ctx.Done():
				log.Info("Reconciliation sweep stopped")
				return
			case <-ticker.C:
				sweep(ctx, engine, workspaceRepo, log)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down reconciler")
}

// sweep runs a reconciliation for every (member, workspace) pair. A failure
// in one workspace is logged and does not stop the sweep of the others;
// within one reconciliation the engine itself fails fast.
func sweep(
	ctx context.Context,
	engine *accountability.Service,
	workspaces *repository.WorkspaceRepository,
	log *zap.Logger,
) {
	log.Info("Starting reconciliation sweep")
	started := time.Now()

	list, err := workspaces.List(ctx)
	if err != nil {
		log.Error("Failed to list workspaces", zap.Error(err))
		return
	}

	var created, failed int
	for _, ws := range list {
		members, err := workspaces.MemberIDs(ctx, ws.ID)
		if err != nil {
			log.Error("Failed to list members", zap.Int64("workspace_id", ws.ID), zap.Error(err))
			failed++
			continue
		}

		for _, userID := range members {
			report, err := engine.CheckAndCreate(ctx, userID, ws.ID)
			if err != nil {
				log.Error("Reconciliation failed",
					zap.Int64("workspace_id", ws.ID),
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
				failed++
				continue
			}
			created += len(report.CreatedIssues)
		}
	}

	log.Info("Reconciliation sweep completed",
		zap.Int("workspaces", len(list)),
		zap.Int("issues_created", created),
		zap.Int("failures", failed),
		zap.Duration("took", time.Since(started)),
	)
}
