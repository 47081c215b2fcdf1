package router

import (
	"time"

	"earnledger/config"
	"earnledger/internal/handler"
	"earnledger/internal/middleware"
	"earnledger/internal/notify"
	"earnledger/internal/repository"
	"earnledger/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, engines and handlers into the HTTP surface the
// bot collaborator and the admin console call.
func Setup(cfg *config.Config, db *gorm.DB, notifier notify.Notifier) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(100, 60*time.Second)))

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Engines share one lock set so all mutations to an account serialize.
	locks := service.NewAccountLocks()
	accountSvc := service.NewAccountService(db, accountRepo, ledgerRepo, locks)
	referralSvc := service.NewReferralService(db, accountRepo, ledgerRepo, settingRepo, locks, notifier, cfg.Engine.ReferralBonusCents)
	taskSvc := service.NewTaskService(db, taskRepo, accountRepo, ledgerRepo, locks, referralSvc)
	withdrawalSvc := service.NewWithdrawalService(db, accountRepo, withdrawalRepo, ledgerRepo, settingRepo, locks, notifier, cfg.Engine.MinWithdrawalCents)
	statsSvc := service.NewStatsService(accountRepo, taskRepo, withdrawalRepo)

	// Handlers
	accountHandler := handler.NewAccountHandler(accountSvc, statsSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalSvc)
	adminHandler := handler.NewAdminHandler(cfg, adminRepo, accountRepo, taskRepo, settingRepo, ledgerRepo, withdrawalSvc)

	api := r.Group("/api/v1")
	{
		engine := api.Group("")
		engine.Use(middleware.ServiceToken(cfg.Engine.ServiceToken))
		{
			engine.POST("/accounts", accountHandler.Create)
			engine.GET("/accounts/:id/balance", accountHandler.GetBalance)
			engine.GET("/accounts/:id/stats", accountHandler.GetStats)
			engine.GET("/tasks", taskHandler.List)
			engine.GET("/tasks/resolve", taskHandler.ResolveSecret)
			engine.GET("/tasks/:key/eligibility", taskHandler.Eligibility)
			engine.POST("/tasks/:key/complete", taskHandler.Complete)
			engine.POST("/withdrawals", withdrawalHandler.Create)
			engine.GET("/withdrawals/:id", withdrawalHandler.Get)
		}

		admin := api.Group("/admin")
		admin.POST("/login", adminHandler.Login)
		authed := admin.Group("")
		authed.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
		{
			authed.GET("/dashboard", adminHandler.Dashboard)
			authed.GET("/withdrawals", adminHandler.ListWithdrawals)
			authed.POST("/withdrawals/:id/resolve", adminHandler.ResolveWithdrawal)
			authed.GET("/accounts", adminHandler.ListAccounts)
			authed.POST("/accounts/:id/ban", adminHandler.SetBanned(true))
			authed.POST("/accounts/:id/unban", adminHandler.SetBanned(false))
			authed.GET("/accounts/:id/ledger", adminHandler.ListLedger)
			authed.GET("/settings", adminHandler.GetSettings)
			authed.PUT("/settings/:key", adminHandler.UpdateSetting)
			authed.GET("/tasks", adminHandler.ListTasks)
			authed.POST("/tasks", adminHandler.CreateTask)
			authed.PATCH("/tasks/:key", adminHandler.UpdateTask)
			authed.DELETE("/tasks/:key", adminHandler.DeleteTask)
		}
	}

	return r
}
