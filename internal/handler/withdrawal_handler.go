package handler

import (
	"net/http"

	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// Create handles POST /withdrawals — reserves balance into a PENDING
// request for an admin to resolve.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	var req struct {
		UserID      int64  `json:"user_id" binding:"required"`
		Method      string `json:"method" binding:"required"`
		Details     string `json:"details" binding:"required"`
		AmountCents int64  `json:"amount_cents" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.withdrawals.Request(req.UserID, req.Method, req.Details, req.AmountCents)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// Get handles GET /withdrawals/:id.
func (h *WithdrawalHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	w, err := h.withdrawals.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}
