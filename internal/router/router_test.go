package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"earnledger/config"
	"earnledger/internal/database"
	"earnledger/internal/domain"
	"earnledger/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testServiceToken = "test-service-token"

var testDBSeq atomic.Int64

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "test"},
		JWT: config.JWTConfig{
			AccessSecret: "test-secret",
			AccessExpiry: time.Hour,
			Issuer:       "earnledger",
		},
		Engine: config.EngineConfig{
			ServiceToken:       testServiceToken,
			MinWithdrawalCents: 10,
			ReferralBonusCents: 50,
			DefaultRewardCents: 10,
			DefaultCooldown:    24 * time.Hour,
			PaymentChannel:     "@payments",
			AdminEmail:         "admin@test.local",
			AdminPassword:      "secret123",
		},
	}
}

func setupServer(t *testing.T) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	dsn := fmt.Sprintf("file:routertest%d?mode=memory&cache=shared", testDBSeq.Add(1))
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
	if err := database.Seed(db, &cfg.Engine); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return Setup(cfg, db, notify.NewLogNotifier()), cfg
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestServiceTokenGate(t *testing.T) {
	r, _ := setupServer(t)

	if w := doJSON(t, r, http.MethodGet, "/api/v1/tasks", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/v1/tasks", "wrong-token", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/v1/tasks", testServiceToken, nil); w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestAccountAndTaskFlow(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/accounts", testServiceToken,
		map[string]interface{}{"user_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("create account: status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["referral_code"]; got != "REF1" {
		t.Errorf("referral_code = %v, want REF1", got)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/tasks/watch/complete", testServiceToken,
		map[string]interface{}{"user_id": 1})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["balance_cents"]; got != float64(10) {
		t.Errorf("balance_cents = %v, want 10", got)
	}

	// Immediate retry lands inside the cooldown window.
	w = doJSON(t, r, http.MethodPost, "/api/v1/tasks/watch/complete", testServiceToken,
		map[string]interface{}{"user_id": 1})
	if w.Code != http.StatusConflict {
		t.Errorf("retry: status = %d, want 409", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts/1/balance", testServiceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("balance: status = %d", w.Code)
	}
	if got := decode(t, w)["balance_cents"]; got != float64(10) {
		t.Errorf("balance_cents = %v, want 10", got)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/tasks/resolve?code=VISIT123", testServiceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("resolve secret: status = %d", w.Code)
	}
	if got := decode(t, w)["task_key"]; got != domain.TaskVisitSite {
		t.Errorf("task_key = %v, want %q", got, domain.TaskVisitSite)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/tasks/resolve?code=BOGUS", testServiceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("bogus secret: status = %d, want 404", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/accounts/42/stats", testServiceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", w.Code)
	}
	body := decode(t, w)
	if body["referral_code"] != "REF42" {
		t.Errorf("referral_code = %v, want REF42", body["referral_code"])
	}
	if body["withdrawal_status"] != "NONE" {
		t.Errorf("withdrawal_status = %v, want NONE", body["withdrawal_status"])
	}
}

func TestWithdrawalLifecycle(t *testing.T) {
	r, cfg := setupServer(t)

	// Earn a balance first; min withdrawal in the test config is one reward.
	doJSON(t, r, http.MethodPost, "/api/v1/accounts", testServiceToken,
		map[string]interface{}{"user_id": 5})
	w := doJSON(t, r, http.MethodPost, "/api/v1/tasks/watch/complete", testServiceToken,
		map[string]interface{}{"user_id": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("complete: status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/withdrawals", testServiceToken,
		map[string]interface{}{"user_id": 5, "method": "usdt-trc20", "details": "TAddr123", "amount_cents": 10})
	if w.Code != http.StatusCreated {
		t.Fatalf("request withdrawal: status = %d, body = %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["status"] != domain.WithdrawalPending {
		t.Errorf("status = %v, want PENDING", created["status"])
	}
	requestID := created["id"].(float64)

	// Balance is reserved immediately; a second request cannot reuse it.
	w = doJSON(t, r, http.MethodPost, "/api/v1/withdrawals", testServiceToken,
		map[string]interface{}{"user_id": 5, "method": "usdt-trc20", "details": "TAddr123", "amount_cents": 10})
	if w.Code != http.StatusConflict {
		t.Errorf("double spend: status = %d, want 409", w.Code)
	}

	// The admin rejects it; the reservation flows back.
	w = doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "",
		map[string]interface{}{"email": cfg.Engine.AdminEmail, "password": cfg.Engine.AdminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body = %s", w.Code, w.Body.String())
	}
	adminToken := decode(t, w)["access_token"].(string)

	resolvePath := fmt.Sprintf("/api/v1/admin/withdrawals/%d/resolve", int(requestID))
	w = doJSON(t, r, http.MethodPost, resolvePath, adminToken,
		map[string]interface{}{"decision": "reject"})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["status"]; got != domain.WithdrawalRejected {
		t.Errorf("status = %v, want REJECTED", got)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/accounts/5/balance", testServiceToken, nil)
	if got := decode(t, w)["balance_cents"]; got != float64(10) {
		t.Errorf("balance after rejection = %v, want 10", got)
	}

	// Resolving a terminal request again is refused.
	w = doJSON(t, r, http.MethodPost, resolvePath, adminToken,
		map[string]interface{}{"decision": "approve"})
	if w.Code != http.StatusConflict {
		t.Errorf("re-resolve: status = %d, want 409", w.Code)
	}
}

func TestAdminAuthRequired(t *testing.T) {
	r, _ := setupServer(t)

	if w := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	// The static engine token is not an admin credential.
	if w := doJSON(t, r, http.MethodGet, "/api/v1/admin/dashboard", testServiceToken, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("service token: status = %d, want 401", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "",
		map[string]interface{}{"email": "admin@test.local", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password: status = %d, want 401", w.Code)
	}
}

func TestWithdrawalBelowMinimumRejected(t *testing.T) {
	r, _ := setupServer(t)

	doJSON(t, r, http.MethodPost, "/api/v1/accounts", testServiceToken,
		map[string]interface{}{"user_id": 9})
	doJSON(t, r, http.MethodPost, "/api/v1/tasks/watch/complete", testServiceToken,
		map[string]interface{}{"user_id": 9})

	w := doJSON(t, r, http.MethodPost, "/api/v1/withdrawals", testServiceToken,
		map[string]interface{}{"user_id": 9, "method": "usdt-trc20", "details": "TAddr123", "amount_cents": 5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("below minimum: status = %d, want 400", w.Code)
	}
}
