package repository

import (
	"errors"
	"time"

	"earnledger/internal/domain"
	"earnledger/internal/models"

	"gorm.io/gorm"
)

type WithdrawalRepository struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

func (r *WithdrawalRepository) Create(tx *gorm.DB, w *models.WithdrawalRequest) error {
	return tx.Create(w).Error
}

func (r *WithdrawalRepository) Get(id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.First(&w, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

// GetTx reads the request inside tx.
func (r *WithdrawalRepository) GetTx(tx *gorm.DB, id uint) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := tx.First(&w, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

// MarkResolved moves a request out of PENDING, guarded by the current status
// so two concurrent resolutions cannot both win. Returns the number of rows
// changed: zero means someone else resolved it first.
func (r *WithdrawalRepository) MarkResolved(tx *gorm.DB, id uint, status string, resolvedAt time.Time) (int64, error) {
	res := tx.Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, domain.WithdrawalPending).
		Updates(map[string]interface{}{"status": status, "resolved_at": resolvedAt})
	return res.RowsAffected, res.Error
}

// LatestByUser returns the user's most recent request, or nil if none exist.
func (r *WithdrawalRepository) LatestByUser(userID int64) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	err := r.db.Where("user_id = ?", userID).Order("id DESC").First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepository) ListByStatus(status string, page, limit int) ([]models.WithdrawalRequest, int64, error) {
	var list []models.WithdrawalRequest
	var total int64
	q := r.db.Model(&models.WithdrawalRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	q.Count(&total)
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error
	return list, total, err
}

// PendingTotalCents is the sum reserved in unresolved requests, for the
// admin dashboard.
func (r *WithdrawalRepository) PendingTotalCents() (int64, error) {
	var total int64
	err := r.db.Model(&models.WithdrawalRequest{}).
		Where("status = ?", domain.WithdrawalPending).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&total).Error
	return total, err
}
