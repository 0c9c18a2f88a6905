package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cadencehq/cadence/internal/service/workflow"
)

type WorkflowHandler struct {
	service *workflow.Service
	logger  *zap.Logger
}

func NewWorkflowHandler(service *workflow.Service, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{service: service, logger: logger}
}

type bodyRequest struct {
	Body string `json:"body" binding:"required"`
}

type hypothesisRequest struct {
	Hypothesis string `json:"hypothesis" binding:"required"`
}

type addIssueRequest struct {
	IssueID int64 `json:"issue_id" binding:"required"`
}

func (h *WorkflowHandler) PostStandup(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sprintID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req bodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.PostStandup(c.Request.Context(), userID, sprintID, req.Body)
	if err != nil {
		h.fail(c, "post standup", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *WorkflowHandler) SubmitSprintReview(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sprintID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req bodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.SubmitSprintReview(c.Request.Context(), userID, sprintID, req.Body)
	if err != nil {
		h.fail(c, "submit sprint review", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *WorkflowHandler) SetSprintHypothesis(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sprintID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req hypothesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetSprintHypothesis(c.Request.Context(), userID, sprintID, req.Hypothesis); err != nil {
		h.fail(c, "set sprint hypothesis", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) StartSprint(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sprintID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.StartSprint(c.Request.Context(), userID, sprintID); err != nil {
		h.fail(c, "start sprint", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) AddIssueToSprint(c *gin.Context) {
	userID := c.GetInt64("user_id")
	sprintID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req addIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.AddIssueToSprint(c.Request.Context(), userID, req.IssueID, sprintID); err != nil {
		h.fail(c, "add issue to sprint", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) SetProjectHypothesis(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req hypothesisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SetProjectHypothesis(c.Request.Context(), userID, projectID, req.Hypothesis); err != nil {
		h.fail(c, "set project hypothesis", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkflowHandler) RecordProjectRetro(c *gin.Context) {
	userID := c.GetInt64("user_id")
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req bodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.RecordProjectRetro(c.Request.Context(), userID, projectID, req.Body)
	if err != nil {
		h.fail(c, "record project retro", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *WorkflowHandler) fail(c *gin.Context, op string, err error) {
	h.logger.Error("Workflow operation failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
}
