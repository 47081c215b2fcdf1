package service

import (
	"errors"
	"fmt"
	"log"

	"earnledger/internal/domain"
	"earnledger/internal/notify"
	"earnledger/internal/repository"

	"gorm.io/gorm"
)

// ReferralService pays the one-time inviter bonus when a referred account
// first qualifies. Idempotence is load-bearing: the qualifying event may be
// re-delivered, and the referral_bonus_paid flag makes every re-invocation a
// safe no-op.
type ReferralService struct {
	db       *gorm.DB
	accounts *repository.AccountRepository
	ledger   *repository.LedgerRepository
	settings *repository.SettingRepository
	locks    *AccountLocks
	notifier notify.Notifier

	fallbackBonusCents int64
}

func NewReferralService(
	db *gorm.DB,
	accounts *repository.AccountRepository,
	ledger *repository.LedgerRepository,
	settings *repository.SettingRepository,
	locks *AccountLocks,
	notifier notify.Notifier,
	fallbackBonusCents int64,
) *ReferralService {
	return &ReferralService{
		db:       db,
		accounts: accounts,
		ledger:   ledger,
		settings: settings,
		locks:    locks,
		notifier: notifier,

		fallbackBonusCents: fallbackBonusCents,
	}
}

// MaybePayBonus credits the referrer of newUserID exactly once. The flag
// read, the referrer credit and the flag set all share one transaction
// scoped to the referred account, so a crash between the two writes cannot
// pay twice on retry.
//
// Returns ErrAlreadyPaid when the bonus was paid before or the account has
// no referrer, ErrUnknownReferrer when the stored code resolves to nothing.
// Both are expected outcomes, not incidents.
func (s *ReferralService) MaybePayBonus(newUserID int64) error {
	bonus := s.settings.GetInt64(domain.SettingReferralBonusCents, s.fallbackBonusCents)
	if bonus <= 0 {
		return nil
	}

	unlock := s.locks.lock(newUserID)
	defer unlock()

	var referrerID int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := s.accounts.GetTx(tx, newUserID)
		if err != nil {
			return err
		}
		if acc.ReferralBonusPaid || acc.ReferredBy == "" {
			return ErrAlreadyPaid
		}
		referrer, err := s.accounts.GetByReferralCode(tx, acc.ReferredBy)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrUnknownReferrer
			}
			return err
		}
		if referrer.UserID == newUserID {
			return ErrUnknownReferrer
		}
		// The referrer's account lock is not held here; the relative
		// credit makes that safe.
		if err := s.accounts.IncrementBalance(tx, referrer.UserID, bonus); err != nil {
			return err
		}
		ref := fmt.Sprintf("referred_user_%d", newUserID)
		if err := s.ledger.Append(tx, referrer.UserID, bonus, domain.EntryReferralBonus, ref); err != nil {
			return err
		}
		if err := s.accounts.MarkReferralBonusPaid(tx, newUserID); err != nil {
			return err
		}
		referrerID = referrer.UserID
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Notify(notify.Event{
		Kind:        notify.KindReferralBonusPaid,
		UserID:      referrerID,
		AmountCents: bonus,
		Reference:   fmt.Sprintf("referred_user_%d", newUserID),
	})
	log.Printf("[referral] paid %d cents to %d for referring %d", bonus, referrerID, newUserID)
	return nil
}
