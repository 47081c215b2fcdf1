package service

import (
	"errors"

	"earnledger/internal/models"
	"earnledger/internal/repository"

	"gorm.io/gorm"
)

// AccountService owns account lifecycle and direct balance mutations. The
// task, referral and withdrawal engines share its per-account locks so all
// mutations to one account are applied in order.
type AccountService struct {
	db       *gorm.DB
	accounts *repository.AccountRepository
	ledger   *repository.LedgerRepository
	locks    *AccountLocks
}

func NewAccountService(
	db *gorm.DB,
	accounts *repository.AccountRepository,
	ledger *repository.LedgerRepository,
	locks *AccountLocks,
) *AccountService {
	return &AccountService{db: db, accounts: accounts, ledger: ledger, locks: locks}
}

// CreateIfAbsent registers the account on first interaction. Calling it
// again is a no-op; in particular a different referred_by on a later call
// never replaces the stored one.
func (s *AccountService) CreateIfAbsent(userID int64, referredBy string) error {
	return s.accounts.CreateIfAbsent(userID, referredBy)
}

// GetBalance is a lenient read: a never-created account reads as zero.
func (s *AccountService) GetBalance(userID int64) (int64, error) {
	acc, err := s.accounts.Get(userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acc.BalanceCents, nil
}

func (s *AccountService) Get(userID int64) (*models.Account, error) {
	return s.accounts.Get(userID)
}

// Credit adds to the balance and appends a ledger entry in one atomic unit.
// Unlike reads, writes against a missing account are a real error.
func (s *AccountService) Credit(userID int64, amountCents int64, entryType, reference string) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	var newBalance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accounts.IncrementBalance(tx, userID, amountCents); err != nil {
			return err
		}
		if err := s.ledger.Append(tx, userID, amountCents, entryType, reference); err != nil {
			return err
		}
		acc, err := s.accounts.GetTx(tx, userID)
		if err != nil {
			return err
		}
		newBalance = acc.BalanceCents
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit removes from the balance, failing with ErrInsufficientFunds when the
// balance does not cover the amount. The funds check rides inside the
// conditional update itself, so concurrent debits cannot drive the balance
// negative.
func (s *AccountService) Debit(userID int64, amountCents int64, entryType, reference string) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	var newBalance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		rows, err := s.accounts.DecrementBalance(tx, userID, amountCents)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Missing account or short balance; the read tells them apart.
			if _, err := s.accounts.GetTx(tx, userID); err != nil {
				return err
			}
			return ErrInsufficientFunds
		}
		if err := s.ledger.Append(tx, userID, -amountCents, entryType, reference); err != nil {
			return err
		}
		acc, err := s.accounts.GetTx(tx, userID)
		if err != nil {
			return err
		}
		newBalance = acc.BalanceCents
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}
