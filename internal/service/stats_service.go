package service

import (
	"errors"
	"time"

	"earnledger/internal/models"
	"earnledger/internal/repository"
)

// Stats is the per-user snapshot the conversation layer renders for
// "My Stats": balance, referral standing, latest withdrawal state and what
// the user can do right now.
type Stats struct {
	UserID           int64        `json:"user_id"`
	BalanceCents     int64        `json:"balance_cents"`
	ReferralCode     string       `json:"referral_code"`
	ReferralCount    int64        `json:"referral_count"`
	TasksCompleted   int64        `json:"tasks_completed"`
	WithdrawalStatus string       `json:"withdrawal_status"` // NONE until the first request
	Tasks            []TaskStatus `json:"tasks"`
}

type TaskStatus struct {
	TaskKey         string     `json:"task_key"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	RewardCents     int64      `json:"reward_cents"`
	Eligible        bool       `json:"eligible"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

type StatsService struct {
	accounts    *repository.AccountRepository
	tasks       *repository.TaskRepository
	withdrawals *repository.WithdrawalRepository
}

func NewStatsService(
	accounts *repository.AccountRepository,
	tasks *repository.TaskRepository,
	withdrawals *repository.WithdrawalRepository,
) *StatsService {
	return &StatsService{accounts: accounts, tasks: tasks, withdrawals: withdrawals}
}

// GetStats assembles the snapshot at `now`. Like GetBalance it is lenient:
// an account that was never created reads as empty rather than failing.
func (s *StatsService) GetStats(userID int64, now time.Time) (*Stats, error) {
	st := &Stats{
		UserID:           userID,
		ReferralCode:     models.ReferralCodeFor(userID),
		WithdrawalStatus: "NONE",
	}

	acc, err := s.accounts.Get(userID)
	if err != nil && !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}
	if acc != nil {
		st.BalanceCents = acc.BalanceCents
		st.ReferralCode = acc.ReferralCode
	}

	if st.ReferralCount, err = s.accounts.CountReferrals(userID); err != nil {
		return nil, err
	}
	if st.TasksCompleted, err = s.tasks.CountCompletions(userID); err != nil {
		return nil, err
	}

	latest, err := s.withdrawals.LatestByUser(userID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		st.WithdrawalStatus = latest.Status
	}

	tasks, err := s.tasks.ListActive()
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		ts := TaskStatus{
			TaskKey:     task.TaskKey,
			Name:        task.Name,
			URL:         task.URL,
			RewardCents: task.RewardCents,
			Eligible:    true,
		}
		tc, err := s.tasks.GetCompletion(userID, task.TaskKey)
		if err != nil {
			return nil, err
		}
		if tc != nil && now.Sub(tc.CompletedAt) < task.Cooldown() {
			next := tc.CompletedAt.Add(task.Cooldown())
			ts.Eligible = false
			ts.NextAvailableAt = &next
		}
		st.Tasks = append(st.Tasks, ts)
	}
	return st, nil
}
