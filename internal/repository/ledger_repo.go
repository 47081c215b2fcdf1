package repository

import (
	"earnledger/internal/models"

	"gorm.io/gorm"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append records one balance mutation inside the same transaction that
// applied it.
func (r *LedgerRepository) Append(tx *gorm.DB, userID int64, amountCents int64, entryType, reference string) error {
	return tx.Create(&models.LedgerEntry{
		UserID:      userID,
		AmountCents: amountCents,
		Type:        entryType,
		Reference:   reference,
	}).Error
}

func (r *LedgerRepository) ListByUser(userID int64, page, limit int) ([]models.LedgerEntry, int64, error) {
	var list []models.LedgerEntry
	var total int64
	q := r.db.Model(&models.LedgerEntry{}).Where("user_id = ?", userID)
	q.Count(&total)
	err := q.Order("id DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error
	return list, total, err
}

// SumByType totals entries of one type across all users, for the admin
// dashboard.
func (r *LedgerRepository) SumByType(entryType string) (int64, error) {
	var total int64
	err := r.db.Model(&models.LedgerEntry{}).
		Where("type = ?", entryType).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&total).Error
	return total, err
}
