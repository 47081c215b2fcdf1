package repository

import (
	"errors"

	"earnledger/internal/domain"
	"earnledger/internal/models"

	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(email string) (*models.AdminUser, error) {
	var u models.AdminUser
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DashboardStats is the admin overview: account totals and money still
// inside the system.
type DashboardStats struct {
	TotalAccounts       int64 `json:"total_accounts"`
	BannedAccounts      int64 `json:"banned_accounts"`
	TotalBalanceCents   int64 `json:"total_balance_cents"`
	PendingWithdrawals  int64 `json:"pending_withdrawals"`
	PendingAmountCents  int64 `json:"pending_amount_cents"`
	ApprovedWithdrawals int64 `json:"approved_withdrawals"`
	TaskRewardCentsPaid int64 `json:"task_reward_cents_paid"`
	ReferralCentsPaid   int64 `json:"referral_cents_paid"`
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.Account{}).Count(&s.TotalAccounts)
	r.db.Model(&models.Account{}).Where("banned = ?", true).Count(&s.BannedAccounts)
	r.db.Model(&models.Account{}).Select("COALESCE(SUM(balance_cents), 0)").Scan(&s.TotalBalanceCents)
	r.db.Model(&models.WithdrawalRequest{}).Where("status = ?", domain.WithdrawalPending).Count(&s.PendingWithdrawals)
	r.db.Model(&models.WithdrawalRequest{}).Where("status = ?", domain.WithdrawalPending).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&s.PendingAmountCents)
	r.db.Model(&models.WithdrawalRequest{}).Where("status = ?", domain.WithdrawalApproved).Count(&s.ApprovedWithdrawals)
	r.db.Model(&models.LedgerEntry{}).Where("type = ?", domain.EntryTaskReward).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&s.TaskRewardCentsPaid)
	r.db.Model(&models.LedgerEntry{}).Where("type = ?", domain.EntryReferralBonus).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&s.ReferralCentsPaid)
	return &s, nil
}
