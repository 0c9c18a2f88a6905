package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/service/accountability"
	"github.com/cadencehq/cadence/pkg/util"
)

type AccountabilityHandler struct {
	engine   *accountability.Service
	throttle *util.Deduper
	logger   *zap.Logger
}

func NewAccountabilityHandler(engine *accountability.Service, throttle *util.Deduper, logger *zap.Logger) *AccountabilityHandler {
	return &AccountabilityHandler{
		engine:   engine,
		throttle: throttle,
		logger:   logger,
	}
}

// CheckMissing handles GET /workspaces/:id/accountability. Read-only.
func (h *AccountabilityHandler) CheckMissing(c *gin.Context) {
	userID := c.GetInt64("user_id")
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	items, err := h.engine.CheckMissing(c.Request.Context(), userID, workspaceID)
	if err != nil {
		h.logger.Error("Accountability check failed",
			zap.Int64("user_id", userID),
			zap.Int64("workspace_id", workspaceID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "accountability check failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"missing_items": items})
}

// Reconcile handles POST /workspaces/:id/accountability/reconcile. Runs the
// rules and materializes remediation issues. Throttled per (user, workspace)
// so that bursts of page loads do not hammer the store; materialization is
// idempotent, so throttling is purely a load shed.
func (h *AccountabilityHandler) Reconcile(c *gin.Context) {
	userID := c.GetInt64("user_id")
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if !h.throttle.AcquirePair(c.Request.Context(), "reconcile", userID, workspaceID) {
		c.JSON(http.StatusAccepted, gin.H{"status": "recently reconciled"})
		return
	}

	report, err := h.engine.CheckAndCreate(c.Request.Context(), userID, workspaceID)
	if err != nil {
		h.logger.Error("Reconciliation failed",
			zap.Int64("user_id", userID),
			zap.Int64("workspace_id", workspaceID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconciliation failed"})
		return
	}

	c.JSON(http.StatusOK, report)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
