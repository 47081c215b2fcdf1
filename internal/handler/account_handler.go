package handler

import (
	"net/http"
	"strconv"
	"time"

	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accounts *service.AccountService
	stats    *service.StatsService
}

func NewAccountHandler(accounts *service.AccountService, stats *service.StatsService) *AccountHandler {
	return &AccountHandler{accounts: accounts, stats: stats}
}

// Create handles POST /accounts — idempotent create-if-absent on first
// interaction. An unknown referral code is stored as-is and never blocks
// registration.
func (h *AccountHandler) Create(c *gin.Context) {
	var req struct {
		UserID     int64  `json:"user_id" binding:"required"`
		ReferredBy string `json:"referred_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.accounts.CreateIfAbsent(req.UserID, req.ReferredBy); err != nil {
		respondError(c, err)
		return
	}
	acc, err := h.accounts.Get(req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// GetBalance handles GET /accounts/:id/balance. Lenient: unknown accounts
// read as zero.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	balance, err := h.accounts.GetBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "balance_cents": balance})
}

// GetStats handles GET /accounts/:id/stats.
func (h *AccountHandler) GetStats(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	st, err := h.stats.GetStats(userID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func parseUserID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
