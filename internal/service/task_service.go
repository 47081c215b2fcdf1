package service

import (
	"errors"
	"log"
	"time"

	"earnledger/internal/domain"
	"earnledger/internal/models"
	"earnledger/internal/repository"

	"gorm.io/gorm"
)

// TaskService decides task eligibility and records completions. Cooldowns
// are computed on read against the catalog's per-task window; there is no
// clock thread.
type TaskService struct {
	db        *gorm.DB
	tasks     *repository.TaskRepository
	accounts  *repository.AccountRepository
	ledger    *repository.LedgerRepository
	locks     *AccountLocks
	referrals *ReferralService
}

func NewTaskService(
	db *gorm.DB,
	tasks *repository.TaskRepository,
	accounts *repository.AccountRepository,
	ledger *repository.LedgerRepository,
	locks *AccountLocks,
	referrals *ReferralService,
) *TaskService {
	return &TaskService{
		db:        db,
		tasks:     tasks,
		accounts:  accounts,
		ledger:    ledger,
		locks:     locks,
		referrals: referrals,
	}
}

// IsEligible reports whether the user may complete the task at `now`:
// either no completion exists yet, or the task's cooldown has elapsed.
func (s *TaskService) IsEligible(userID int64, taskKey string, now time.Time) (bool, error) {
	task, err := s.tasks.GetByKey(taskKey)
	if err != nil {
		return false, err
	}
	tc, err := s.tasks.GetCompletion(userID, taskKey)
	if err != nil {
		return false, err
	}
	if tc == nil {
		return true, nil
	}
	return now.Sub(tc.CompletedAt) >= task.Cooldown(), nil
}

// Complete records a completion and credits the task's configured reward,
// returning the new balance. Eligibility is re-checked inside the same
// transaction as the write, closing the race where two near-simultaneous
// completions both pass a prior check. ErrTaskOnCooldown is a user-facing
// outcome, not something to retry.
func (s *TaskService) Complete(userID int64, taskKey string, now time.Time) (int64, error) {
	task, err := s.tasks.GetByKey(taskKey)
	if err != nil {
		return 0, err
	}

	newBalance, err := s.complete(userID, task, now)
	if err != nil {
		return 0, err
	}

	// Qualifying event for the referral bonus. The flag gate inside
	// MaybePayBonus makes replays and non-first completions no-ops.
	if err := s.referrals.MaybePayBonus(userID); err != nil &&
		!errors.Is(err, ErrAlreadyPaid) && !errors.Is(err, ErrUnknownReferrer) {
		log.Printf("[task] referral payout for user %d failed: %v", userID, err)
	}
	return newBalance, nil
}

func (s *TaskService) complete(userID int64, task *models.TaskConfig, now time.Time) (int64, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	var newBalance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		acc, err := s.accounts.GetTx(tx, userID)
		if err != nil {
			return err
		}
		if acc.Banned {
			return ErrAccountBanned
		}
		tc, err := s.tasks.GetCompletionTx(tx, userID, task.TaskKey)
		if err != nil {
			return err
		}
		if tc != nil && now.Sub(tc.CompletedAt) < task.Cooldown() {
			return ErrTaskOnCooldown
		}
		if err := s.tasks.UpsertCompletion(tx, userID, task.TaskKey, now); err != nil {
			return err
		}
		if err := s.accounts.IncrementBalance(tx, userID, task.RewardCents); err != nil {
			return err
		}
		if err := s.ledger.Append(tx, userID, task.RewardCents, domain.EntryTaskReward, task.TaskKey); err != nil {
			return err
		}
		acc, err = s.accounts.GetTx(tx, userID)
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

// ResolveSecret maps a submitted secret code to its task config for the
// conversation layer. The engine itself never sees free-text replies.
func (s *TaskService) ResolveSecret(secret string) (*models.TaskConfig, error) {
	return s.tasks.GetBySecret(secret)
}

func (s *TaskService) ListActive() ([]models.TaskConfig, error) {
	return s.tasks.ListActive()
}
