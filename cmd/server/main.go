package main

import (
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/handler"
	"github.com/cadencehq/cadence/internal/httpserver"
	"github.com/cadencehq/cadence/internal/repository"
	"github.com/cadencehq/cadence/internal/service/accountability"
	"github.com/cadencehq/cadence/internal/service/auth"
	"github.com/cadencehq/cadence/internal/service/workflow"
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

	log.Info("Starting cadence server",
		zap.String("db_host", cfg.DB.Host),
		zap.String("port", cfg.Server.Port),
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
	userRepo := repository.NewUserRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	// Services
	engine := accountability.NewService(workspaceRepo, sprintRepo, projectRepo, documentRepo, issueRepo, log)
	workflowService := workflow.NewService(sprintRepo, projectRepo, documentRepo, issueRepo, engine, publisher, log)
	authService := auth.NewService(userRepo, cfg.JWT.Secret)

	throttle := util.NewDeduper(rdb, cfg.Reconcile.ThrottleTTL)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	accountabilityHandler := handler.NewAccountabilityHandler(engine, throttle, log)
	workflowHandler := handler.NewWorkflowHandler(workflowService, log)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, log)

	router := httpserver.NewRouter(
		authHandler,
		accountabilityHandler,
		workflowHandler,
		notificationHandler,
		cfg.JWT.Secret,
	)

	log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("HTTP server exited", zap.Error(err))
	}
}
