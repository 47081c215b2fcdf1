package models

import "time"

// WithdrawalRequest is created in PENDING with the amount already debited
// from the account. It transitions exactly once to APPROVED or REJECTED;
// terminal rows are never mutated again.
type WithdrawalRequest struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	OrderID     string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	UserID      int64      `gorm:"not null;index" json:"user_id"`
	Method      string     `gorm:"size:32;not null" json:"method"`   // payout channel tag, e.g. "usdt-trc20"
	Details     string     `gorm:"size:255;not null" json:"details"` // payout destination, opaque to the engine
	AmountCents int64      `gorm:"not null" json:"amount_cents"`
	Status      string     `gorm:"size:20;not null;index" json:"status"` // PENDING, APPROVED, REJECTED
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

func (WithdrawalRequest) TableName() string { return "withdrawal_requests" }
