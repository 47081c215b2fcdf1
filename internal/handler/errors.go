package handler

import (
	"errors"
	"log"
	"net/http"

	"earnledger/internal/repository"
	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps typed engine errors to specific user-facing messages.
// Anything unrecognized is a storage failure: generic message, no internal
// detail, retryable by the caller.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskOnCooldown):
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed, try again after the cooldown"})
	case errors.Is(err, service.ErrInsufficientFunds):
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient balance"})
	case errors.Is(err, service.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount is below the minimum withdrawal"})
	case errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
	case errors.Is(err, service.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "withdrawal already resolved"})
	case errors.Is(err, service.ErrAlreadyPaid):
		c.JSON(http.StatusConflict, gin.H{"error": "referral bonus already paid"})
	case errors.Is(err, service.ErrUnknownReferrer):
		c.JSON(http.StatusNotFound, gin.H{"error": "referrer not found"})
	case errors.Is(err, service.ErrAccountBanned):
		c.JSON(http.StatusForbidden, gin.H{"error": "account is banned"})
	case errors.Is(err, repository.ErrUnknownTask):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
	case errors.Is(err, repository.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	case errors.Is(err, repository.ErrWithdrawalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "withdrawal not found"})
	default:
		log.Printf("[http] storage error: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary error, please try again"})
	}
}
