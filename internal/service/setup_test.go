package service

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"earnledger/config"
	"earnledger/internal/database"
	"earnledger/internal/notify"
	"earnledger/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// captureNotifier records emitted events instead of delivering them.
type captureNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *captureNotifier) Notify(e notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *captureNotifier) byKind(kind string) []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notify.Event
	for _, e := range n.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	db          *gorm.DB
	accounts    *AccountService
	tasks       *TaskService
	referrals   *ReferralService
	withdrawals *WithdrawalService
	stats       *StatsService

	accountRepo *repository.AccountRepository
	taskRepo    *repository.TaskRepository
	ledgerRepo  *repository.LedgerRepository
	settingRepo *repository.SettingRepository
	notifier    *captureNotifier
}

func defaultEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		MinWithdrawalCents: 1000,
		ReferralBonusCents: 50,
		DefaultRewardCents: 10,
		DefaultCooldown:    24 * time.Hour,
		PaymentChannel:     "@payments",
		AdminEmail:         "admin@test.local",
		AdminPassword:      "secret123",
	}
}

// newTestEnv wires the engines against a fresh in-memory store, seeded the
// same way the server seeds on boot. The pool is pinned to one connection so
// concurrent tests exercise the engines' own serialization, not the store's.
func newTestEnv(t *testing.T, cfg *config.EngineConfig) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = defaultEngineConfig()
	}

	dsn := fmt.Sprintf("file:enginetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.Seed(db, cfg); err != nil {
		t.Fatalf("seed: %v", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	notifier := &captureNotifier{}
	locks := NewAccountLocks()
	accountSvc := NewAccountService(db, accountRepo, ledgerRepo, locks)
	referralSvc := NewReferralService(db, accountRepo, ledgerRepo, settingRepo, locks, notifier, cfg.ReferralBonusCents)
	taskSvc := NewTaskService(db, taskRepo, accountRepo, ledgerRepo, locks, referralSvc)
	withdrawalSvc := NewWithdrawalService(db, accountRepo, withdrawalRepo, ledgerRepo, settingRepo, locks, notifier, cfg.MinWithdrawalCents)
	statsSvc := NewStatsService(accountRepo, taskRepo, withdrawalRepo)

	return &testEnv{
		db:          db,
		accounts:    accountSvc,
		tasks:       taskSvc,
		referrals:   referralSvc,
		withdrawals: withdrawalSvc,
		stats:       statsSvc,
		accountRepo: accountRepo,
		taskRepo:    taskRepo,
		ledgerRepo:  ledgerRepo,
		settingRepo: settingRepo,
		notifier:    notifier,
	}
}

func (env *testEnv) seedAccount(t *testing.T, userID int64, referredBy string) {
	t.Helper()
	if err := env.accounts.CreateIfAbsent(userID, referredBy); err != nil {
		t.Fatalf("seed account %d: %v", userID, err)
	}
}

func (env *testEnv) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := env.accounts.GetBalance(userID)
	if err != nil {
		t.Fatalf("get balance for %d: %v", userID, err)
	}
	return b
}
