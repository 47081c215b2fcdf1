package models

import "time"

// LedgerEntry is an append-only record of every balance mutation. Positive
// amounts are credits, negative are debits.
type LedgerEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	AmountCents int64     `gorm:"not null" json:"amount_cents"`
	Type        string    `gorm:"size:30;not null;index" json:"type"` // TASK_REWARD, REFERRAL_BONUS, WITHDRAWAL, ...
	Reference   string    `gorm:"size:128" json:"reference"`          // e.g. task key or withdrawal order id
	CreatedAt   time.Time `json:"created_at"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }
