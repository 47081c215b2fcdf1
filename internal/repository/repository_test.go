package repository

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"earnledger/internal/database"
	"earnledger/internal/domain"
	"earnledger/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repotest%d?mode=memory&cache=shared", testDBSeq.Add(1))
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
	return db
}

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	if err := repo.CreateIfAbsent(1, "REF9"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if err := repo.CreateIfAbsent(1, "REF8"); err != nil {
		t.Fatalf("second create: %v", err)
	}

	acc, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.ReferredBy != "REF9" {
		t.Errorf("referred_by = %q, want the first value REF9", acc.ReferredBy)
	}
}

func TestGetMissingAccount(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	if _, err := repo.Get(404); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestIncrementBalanceMissingAccount(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)

	if err := repo.IncrementBalance(db, 404, 50); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestIncrementBalanceIsRelative(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	if err := repo.CreateIfAbsent(1, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.IncrementBalance(db, 1, 50); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := repo.IncrementBalance(db, 1, 25); err != nil {
		t.Fatalf("second increment: %v", err)
	}
	acc, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.BalanceCents != 75 {
		t.Errorf("balance = %d, want 75", acc.BalanceCents)
	}
}

func TestBalanceWritesAreRelative(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	if err := repo.CreateIfAbsent(1, ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	// One writer takes its snapshot of the balance...
	before, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// ...a refund from another actor commits after that snapshot...
	if err := repo.IncrementBalance(db, 1, 300); err != nil {
		t.Fatalf("refund: %v", err)
	}
	// ...and the first writer's credit lands without erasing it.
	if err := repo.IncrementBalance(db, 1, 10); err != nil {
		t.Fatalf("reward: %v", err)
	}

	acc, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := before.BalanceCents + 310; acc.BalanceCents != want {
		t.Errorf("balance = %d, want %d (both writes applied)", acc.BalanceCents, want)
	}
}

func TestDecrementBalanceGuardsFunds(t *testing.T) {
	db := newTestDB(t)
	repo := NewAccountRepository(db)
	if err := repo.CreateIfAbsent(1, ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.IncrementBalance(db, 1, 100); err != nil {
		t.Fatalf("credit: %v", err)
	}

	rows, err := repo.DecrementBalance(db, 1, 70)
	if err != nil || rows != 1 {
		t.Fatalf("covered debit: rows=%d err=%v, want 1", rows, err)
	}
	rows, err = repo.DecrementBalance(db, 1, 50)
	if err != nil || rows != 0 {
		t.Fatalf("short debit: rows=%d err=%v, want 0", rows, err)
	}
	rows, err = repo.DecrementBalance(db, 404, 10)
	if err != nil || rows != 0 {
		t.Fatalf("missing account: rows=%d err=%v, want 0", rows, err)
	}

	acc, err := repo.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.BalanceCents != 30 {
		t.Errorf("balance = %d, want 30 (rejected debits must not apply)", acc.BalanceCents)
	}
}

func TestUpsertCompletionMovesForward(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	t0 := time.Now().Truncate(time.Second)

	if err := repo.UpsertCompletion(db, 1, "watch", t0); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := repo.UpsertCompletion(db, 1, "watch", t0.Add(24*time.Hour)); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var count int64
	db.Model(&models.TaskCompletion{}).Where("user_id = ?", 1).Count(&count)
	if count != 1 {
		t.Fatalf("completion rows = %d, want 1 per (user, task)", count)
	}
	tc, err := repo.GetCompletion(1, "watch")
	if err != nil || tc == nil {
		t.Fatalf("get completion: tc=%v err=%v", tc, err)
	}
	if !tc.CompletedAt.Equal(t0.Add(24 * time.Hour)) {
		t.Errorf("completed_at = %v, want %v", tc.CompletedAt, t0.Add(24*time.Hour))
	}
}

func TestTaskKeyReusableAfterDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewTaskRepository(db)
	first := &models.TaskConfig{
		TaskKey:      "watch",
		Name:         "Watch Video",
		SecretCode:   "VIDEO123",
		RewardCents:  10,
		CooldownSecs: 3600,
		Active:       true,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete("watch"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The key and secret are free again; a replacement task must not trip
	// the unique indexes.
	second := &models.TaskConfig{
		TaskKey:      "watch",
		Name:         "Watch Video v2",
		SecretCode:   "VIDEO123",
		RewardCents:  20,
		CooldownSecs: 3600,
		Active:       true,
	}
	if err := repo.Create(second); err != nil {
		t.Fatalf("recreate with reused key: %v", err)
	}
	task, err := repo.GetByKey("watch")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.RewardCents != 20 {
		t.Errorf("reward = %d, want the replacement's 20", task.RewardCents)
	}
}

func TestMarkResolvedWinsOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewWithdrawalRepository(db)
	w := &models.WithdrawalRequest{
		OrderID:     "wd-test",
		UserID:      1,
		Method:      "usdt-trc20",
		Details:     "TAddr123",
		AmountCents: 300,
		Status:      domain.WithdrawalPending,
	}
	if err := repo.Create(db, w); err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Now()
	changed, err := repo.MarkResolved(db, w.ID, domain.WithdrawalRejected, now)
	if err != nil || changed != 1 {
		t.Fatalf("first resolve: changed=%d err=%v, want 1", changed, err)
	}
	changed, err = repo.MarkResolved(db, w.ID, domain.WithdrawalApproved, now)
	if err != nil || changed != 0 {
		t.Fatalf("second resolve: changed=%d err=%v, want 0", changed, err)
	}

	got, err := repo.Get(w.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.WithdrawalRejected {
		t.Errorf("status = %q, want the first transition REJECTED", got.Status)
	}
}

func TestSettingGetInt64Fallback(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingRepository(db)

	if got := repo.GetInt64("missing", 42); got != 42 {
		t.Errorf("missing key = %d, want fallback 42", got)
	}

	if err := repo.Set(domain.SettingMinWithdrawalCents, "1500"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := repo.GetInt64(domain.SettingMinWithdrawalCents, 42); got != 1500 {
		t.Errorf("stored key = %d, want 1500", got)
	}

	if err := repo.Set(domain.SettingMinWithdrawalCents, "2000"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := repo.GetInt64(domain.SettingMinWithdrawalCents, 42); got != 2000 {
		t.Errorf("overwritten key = %d, want 2000", got)
	}
}

func TestLatestByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewWithdrawalRepository(db)

	latest, err := repo.LatestByUser(1)
	if err != nil || latest != nil {
		t.Fatalf("no requests: latest=%v err=%v, want nil", latest, err)
	}

	for i, status := range []string{domain.WithdrawalApproved, domain.WithdrawalPending} {
		w := &models.WithdrawalRequest{
			OrderID:     fmt.Sprintf("wd-%d", i),
			UserID:      1,
			Method:      "usdt-trc20",
			Details:     "TAddr123",
			AmountCents: 100,
			Status:      status,
		}
		if err := repo.Create(db, w); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	latest, err = repo.LatestByUser(1)
	if err != nil || latest == nil {
		t.Fatalf("latest: %v err=%v", latest, err)
	}
	if latest.Status != domain.WithdrawalPending {
		t.Errorf("latest status = %q, want the most recent PENDING", latest.Status)
	}
}
