package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cadencehq/cadence/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *handler.AuthHandler,
	accountabilityHandler *handler.AccountabilityHandler,
	workflowHandler *handler.WorkflowHandler,
	notificationHandler *handler.NotificationHandler,
	jwtSecret string,
) *Router {
	r := gin.Default()

	// Public
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/workspaces/:id/accountability", accountabilityHandler.CheckMissing)
		auth.POST("/workspaces/:id/accountability/reconcile", accountabilityHandler.Reconcile)

		auth.POST("/sprints/:id/standups", workflowHandler.PostStandup)
		auth.POST("/sprints/:id/review", workflowHandler.SubmitSprintReview)
		auth.PUT("/sprints/:id/hypothesis", workflowHandler.SetSprintHypothesis)
		auth.POST("/sprints/:id/start", workflowHandler.StartSprint)
		auth.POST("/sprints/:id/issues", workflowHandler.AddIssueToSprint)

		auth.PUT("/projects/:id/hypothesis", workflowHandler.SetProjectHypothesis)
		auth.POST("/projects/:id/retro", workflowHandler.RecordProjectRetro)

		auth.GET("/notifications", notificationHandler.List)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
