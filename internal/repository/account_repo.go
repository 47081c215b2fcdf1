package repository

import (
	"errors"

	"earnledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateIfAbsent inserts a new account with a derived referral code, doing
// nothing if the row already exists. A second create never overwrites
// referred_by. The supplied referral code is stored verbatim even when it
// resolves to no account; an unknown referrer simply never gets paid.
func (r *AccountRepository) CreateIfAbsent(userID int64, referredBy string) error {
	acc := models.Account{
		UserID:       userID,
		ReferralCode: models.ReferralCodeFor(userID),
		ReferredBy:   referredBy,
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&acc).Error
}

func (r *AccountRepository) Get(userID int64) (*models.Account, error) {
	var acc models.Account
	err := r.db.Where("user_id = ?", userID).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// GetTx reads the account inside tx. Engine operations serialize per
// account through the shared lock set before opening the transaction, so
// the read-decide-write below cannot interleave with another operation on
// the same account.
func (r *AccountRepository) GetTx(tx *gorm.DB, userID int64) (*models.Account, error) {
	var acc models.Account
	err := tx.Where("user_id = ?", userID).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (r *AccountRepository) GetByReferralCode(tx *gorm.DB, code string) (*models.Account, error) {
	var acc models.Account
	err := tx.Where("referral_code = ?", code).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// IncrementBalance applies a relative credit. Every balance write is
// relative, never an absolute value computed from an earlier read, so a
// writer can never erase a credit that committed after its snapshot.
func (r *AccountRepository) IncrementBalance(tx *gorm.DB, userID int64, deltaCents int64) error {
	res := tx.Model(&models.Account{}).Where("user_id = ?", userID).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DecrementBalance subtracts only when the balance covers the amount; the
// funds check and the write are a single conditional statement, so
// concurrent debits cannot drive the balance negative. Zero rows changed
// means the funds were not there (or the account does not exist — the
// caller distinguishes).
func (r *AccountRepository) DecrementBalance(tx *gorm.DB, userID int64, amountCents int64) (int64, error) {
	res := tx.Model(&models.Account{}).
		Where("user_id = ? AND balance_cents >= ?", userID, amountCents).
		UpdateColumn("balance_cents", gorm.Expr("balance_cents - ?", amountCents))
	return res.RowsAffected, res.Error
}

func (r *AccountRepository) MarkReferralBonusPaid(tx *gorm.DB, userID int64) error {
	return tx.Model(&models.Account{}).Where("user_id = ?", userID).
		Update("referral_bonus_paid", true).Error
}

func (r *AccountRepository) SetBanned(userID int64, banned bool) error {
	res := r.db.Model(&models.Account{}).Where("user_id = ?", userID).
		Update("banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// CountReferrals returns how many accounts name this user's code as their
// inviter.
func (r *AccountRepository) CountReferrals(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).
		Where("referred_by = ?", models.ReferralCodeFor(userID)).
		Count(&count).Error
	return count, err
}

func (r *AccountRepository) List(page, limit int) ([]models.Account, int64, error) {
	var list []models.Account
	var total int64
	q := r.db.Model(&models.Account{})
	q.Count(&total)
	err := q.Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error
	return list, total, err
}
