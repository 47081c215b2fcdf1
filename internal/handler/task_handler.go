package handler

import (
	"net/http"
	"time"

	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks — the active catalog the bot renders as buttons.
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.tasks.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

// ResolveSecret handles GET /tasks/resolve?code=... — maps a submitted
// secret code to its task key so the bot doesn't keep its own catalog copy.
func (h *TaskHandler) ResolveSecret(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	task, err := h.tasks.ResolveSecret(code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_key": task.TaskKey, "reward_cents": task.RewardCents})
}

// Eligibility handles GET /tasks/:key/eligibility?user_id=...
func (h *TaskHandler) Eligibility(c *gin.Context) {
	var req struct {
		UserID int64 `form:"user_id" binding:"required"`
	}
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eligible, err := h.tasks.IsEligible(req.UserID, c.Param("key"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_key": c.Param("key"), "eligible": eligible})
}

// Complete handles POST /tasks/:key/complete — records the completion,
// credits the configured reward and returns the new balance.
func (h *TaskHandler) Complete(c *gin.Context) {
	var req struct {
		UserID int64 `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	balance, err := h.tasks.Complete(req.UserID, c.Param("key"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_key": c.Param("key"), "balance_cents": balance})
}
