package handler

import (
	"net/http"
	"strconv"

	"earnledger/config"
	"earnledger/internal/auth"
	"earnledger/internal/models"
	"earnledger/internal/repository"
	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AdminHandler struct {
	cfg         *config.Config
	adminRepo   *repository.AdminRepository
	accountRepo *repository.AccountRepository
	taskRepo    *repository.TaskRepository
	settingRepo *repository.SettingRepository
	ledgerRepo  *repository.LedgerRepository
	withdrawals *service.WithdrawalService
}

func NewAdminHandler(
	cfg *config.Config,
	adminRepo *repository.AdminRepository,
	accountRepo *repository.AccountRepository,
	taskRepo *repository.TaskRepository,
	settingRepo *repository.SettingRepository,
	ledgerRepo *repository.LedgerRepository,
	withdrawals *service.WithdrawalService,
) *AdminHandler {
	return &AdminHandler{
		cfg:         cfg,
		adminRepo:   adminRepo,
		accountRepo: accountRepo,
		taskRepo:    taskRepo,
		settingRepo: settingRepo,
		ledgerRepo:  ledgerRepo,
		withdrawals: withdrawals,
	}
}

// Login handles POST /admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	admin, err := h.adminRepo.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := auth.GenerateAccessToken(&h.cfg.JWT, admin.ID, admin.Email, admin.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// Dashboard handles GET /admin/dashboard — overview totals.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminRepo.GetDashboardStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListWithdrawals handles GET /admin/withdrawals?status=PENDING.
func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.withdrawals.ListByStatus(c.Query("status"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// ResolveWithdrawal handles POST /admin/withdrawals/:id/resolve with a
// decision of "approve" or "reject". Rejection refunds the user.
func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Decision string `json:"decision" binding:"required,oneof=approve reject"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.withdrawals.Resolve(id, req.Decision == "approve")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// ListAccounts handles GET /admin/accounts.
func (h *AdminHandler) ListAccounts(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.accountRepo.List(page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// SetBanned handles POST /admin/accounts/:id/ban and .../unban.
func (h *AdminHandler) SetBanned(banned bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
			return
		}
		if err := h.accountRepo.SetBanned(userID, banned); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "banned": banned})
	}
}

// ListLedger handles GET /admin/accounts/:id/ledger.
func (h *AdminHandler) ListLedger(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	page, limit := parsePagination(c)
	list, total, err := h.ledgerRepo.ListByUser(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list, "total": total, "page": page, "limit": limit})
}

// GetSettings handles GET /admin/settings.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	list, err := h.settingRepo.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": list})
}

// UpdateSetting handles PUT /admin/settings/:key.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settingRepo.Set(c.Param("key"), req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": req.Value})
}

// ListTasks handles GET /admin/tasks — the full catalog, inactive included.
func (h *AdminHandler) ListTasks(c *gin.Context) {
	list, err := h.taskRepo.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": list})
}

// CreateTask handles POST /admin/tasks — new task variants are data, not
// code.
func (h *AdminHandler) CreateTask(c *gin.Context) {
	var req struct {
		TaskKey      string `json:"task_key" binding:"required"`
		Name         string `json:"name" binding:"required"`
		URL          string `json:"url"`
		SecretCode   string `json:"secret_code" binding:"required"`
		RewardCents  int64  `json:"reward_cents" binding:"required,min=1"`
		CooldownSecs int64  `json:"cooldown_secs" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := &models.TaskConfig{
		TaskKey:      req.TaskKey,
		Name:         req.Name,
		URL:          req.URL,
		SecretCode:   req.SecretCode,
		RewardCents:  req.RewardCents,
		CooldownSecs: req.CooldownSecs,
		Active:       true,
	}
	if err := h.taskRepo.Create(t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UpdateTask handles PATCH /admin/tasks/:key.
func (h *AdminHandler) UpdateTask(c *gin.Context) {
	list, err := h.taskRepo.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	var task *models.TaskConfig
	for i := range list {
		if list[i].TaskKey == c.Param("key") {
			task = &list[i]
			break
		}
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	var req struct {
		Name         *string `json:"name"`
		URL          *string `json:"url"`
		SecretCode   *string `json:"secret_code"`
		RewardCents  *int64  `json:"reward_cents"`
		CooldownSecs *int64  `json:"cooldown_secs"`
		Active       *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.URL != nil {
		task.URL = *req.URL
	}
	if req.SecretCode != nil {
		task.SecretCode = *req.SecretCode
	}
	if req.RewardCents != nil {
		task.RewardCents = *req.RewardCents
	}
	if req.CooldownSecs != nil {
		task.CooldownSecs = *req.CooldownSecs
	}
	if req.Active != nil {
		task.Active = *req.Active
	}
	if err := h.taskRepo.Update(task); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /admin/tasks/:key.
func (h *AdminHandler) DeleteTask(c *gin.Context) {
	if err := h.taskRepo.Delete(c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return uint(id), err
}

func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
