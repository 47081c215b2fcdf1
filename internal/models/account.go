package models

import (
	"fmt"
	"time"
)

// Account is one bot user's ledger row. The Telegram user id is the primary
// key; accounts are created on first interaction and never deleted.
type Account struct {
	UserID            int64     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	BalanceCents      int64     `gorm:"not null;default:0" json:"balance_cents"`
	ReferralCode      string    `gorm:"uniqueIndex;size:32;not null" json:"referral_code"`
	ReferredBy        string    `gorm:"size:32;index" json:"referred_by"` // referral code of the inviter, fixed at creation
	ReferralBonusPaid bool      `gorm:"not null;default:false" json:"referral_bonus_paid"`
	Banned            bool      `gorm:"not null;default:false" json:"banned"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// ReferralCodeFor derives the deterministic referral code for a user id.
func ReferralCodeFor(userID int64) string {
	return fmt.Sprintf("REF%d", userID)
}
