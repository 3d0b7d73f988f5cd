package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alimgiray/leaderboard/internal/models"
	"github.com/alimgiray/leaderboard/internal/services"
	"github.com/gin-gonic/gin"
)

type RunHandler struct {
	schedulerService *services.SchedulerService
	baseCtx          context.Context
}

// NewRunHandler creates the run handler. Triggered runs outlive the request and
// are bound to baseCtx instead.
func NewRunHandler(baseCtx context.Context, schedulerService *services.SchedulerService) *RunHandler {
	return &RunHandler{
		schedulerService: schedulerService,
		baseCtx:          baseCtx,
	}
}

// ListRuns serves the run history, newest first
func (h *RunHandler) ListRuns(c *gin.Context) {
	c.JSON(http.StatusOK, h.schedulerService.Runs())
}

// TriggerRun starts a run in the background
func (h *RunHandler) TriggerRun(c *gin.Context) {
	run, err := h.schedulerService.Trigger(h.baseCtx, models.RunTriggerManual)
	if errors.Is(err, services.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, run)
}
