package service

import (
	"fmt"
	"time"

	"earnledger/internal/domain"
	"earnledger/internal/models"
	"earnledger/internal/notify"
	"earnledger/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalService reserves balance into pending requests and runs the
// Pending -> Approved/Rejected state machine for the admin collaborator.
// The actual payout happens outside; Approved only means the funds stay
// debited.
type WithdrawalService struct {
	db          *gorm.DB
	accounts    *repository.AccountRepository
	withdrawals *repository.WithdrawalRepository
	ledger      *repository.LedgerRepository
	settings    *repository.SettingRepository
	locks       *AccountLocks
	notifier    notify.Notifier

	fallbackMinCents int64
}

func NewWithdrawalService(
	db *gorm.DB,
	accounts *repository.AccountRepository,
	withdrawals *repository.WithdrawalRepository,
	ledger *repository.LedgerRepository,
	settings *repository.SettingRepository,
	locks *AccountLocks,
	notifier notify.Notifier,
	fallbackMinCents int64,
) *WithdrawalService {
	return &WithdrawalService{
		db:          db,
		accounts:    accounts,
		withdrawals: withdrawals,
		ledger:      ledger,
		settings:    settings,
		locks:       locks,
		notifier:    notifier,

		fallbackMinCents: fallbackMinCents,
	}
}

// Request debits the amount and creates the PENDING record in one atomic
// unit: a crash cannot leave the balance debited without a record, or a
// record without the debit.
func (s *WithdrawalService) Request(userID int64, method, details string, amountCents int64) (*models.WithdrawalRequest, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	min := s.settings.GetInt64(domain.SettingMinWithdrawalCents, s.fallbackMinCents)
	if amountCents < min {
		return nil, ErrBelowMinimum
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	w := &models.WithdrawalRequest{
		OrderID:     fmt.Sprintf("wd-%s", uuid.New().String()),
		UserID:      userID,
		Method:      method,
		Details:     details,
		AmountCents: amountCents,
		Status:      domain.WithdrawalPending,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := s.accounts.GetTx(tx, userID)
		if err != nil {
			return err
		}
		if acc.Banned {
			return ErrAccountBanned
		}
		rows, err := s.accounts.DecrementBalance(tx, userID, amountCents)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientFunds
		}
		if err := s.withdrawals.Create(tx, w); err != nil {
			return err
		}
		return s.ledger.Append(tx, userID, -amountCents, domain.EntryWithdrawal, w.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Resolve transitions a PENDING request exactly once. Rejection refunds the
// reserved amount in the same transaction; approval only flips the status.
// The notification goes out after commit and its delivery never rolls the
// transition back.
func (s *WithdrawalService) Resolve(requestID uint, approve bool) (*models.WithdrawalRequest, error) {
	var w *models.WithdrawalRequest
	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		w, err = s.withdrawals.GetTx(tx, requestID)
		if err != nil {
			return err
		}
		status := domain.WithdrawalRejected
		if approve {
			status = domain.WithdrawalApproved
		}
		// Status-guarded update: only one resolution can move the request
		// out of PENDING, so the refund below runs at most once.
		changed, err := s.withdrawals.MarkResolved(tx, w.ID, status, now)
		if err != nil {
			return err
		}
		if changed == 0 {
			return ErrAlreadyResolved
		}
		if !approve {
			// Refund as a relative credit; the requester's account lock is
			// not held here.
			if err := s.accounts.IncrementBalance(tx, w.UserID, w.AmountCents); err != nil {
				return err
			}
			if err := s.ledger.Append(tx, w.UserID, w.AmountCents, domain.EntryWithdrawalRefund, w.OrderID); err != nil {
				return err
			}
		}
		w.Status = status
		w.ResolvedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(notify.Event{
		Kind:        notify.KindWithdrawalResolved,
		UserID:      w.UserID,
		AmountCents: w.AmountCents,
		Status:      w.Status,
		Reference:   w.OrderID,
	})
	return w, nil
}

func (s *WithdrawalService) Get(id uint) (*models.WithdrawalRequest, error) {
	return s.withdrawals.Get(id)
}

func (s *WithdrawalService) ListByStatus(status string, page, limit int) ([]models.WithdrawalRequest, int64, error) {
	return s.withdrawals.ListByStatus(status, page, limit)
}
