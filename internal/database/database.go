package database

import (
	"log"
	"strconv"

	"earnledger/config"
	"earnledger/internal/domain"
	"earnledger/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.TaskConfig{},
		&models.TaskCompletion{},
		&models.WithdrawalRequest{},
		&models.LedgerEntry{},
		&models.SystemSetting{},
		&models.AdminUser{},
	)
}

// Seed inserts default settings, the default task catalog and the admin
// account if they don't already exist. Safe to run on every boot.
func Seed(db *gorm.DB, cfg *config.EngineConfig) error {
	defaults := map[string]string{
		domain.SettingMinWithdrawalCents: strconv.FormatInt(cfg.MinWithdrawalCents, 10),
		domain.SettingReferralBonusCents: strconv.FormatInt(cfg.ReferralBonusCents, 10),
		domain.SettingPaymentChannel:     cfg.PaymentChannel,
	}
	for k, v := range defaults {
		var count int64
		db.Model(&models.SystemSetting{}).Where("`key` = ?", k).Count(&count)
		if count == 0 {
			if err := db.Create(&models.SystemSetting{Key: k, Value: v}).Error; err != nil {
				return err
			}
		}
	}

	cooldownSecs := int64(cfg.DefaultCooldown.Seconds())
	tasks := []models.TaskConfig{
		{TaskKey: domain.TaskWatchVideo, Name: "Watch Video", URL: "https://example.com/video", SecretCode: "VIDEO123", RewardCents: cfg.DefaultRewardCents, CooldownSecs: cooldownSecs, Active: true},
		{TaskKey: domain.TaskVisitSite, Name: "Visit Website", URL: "https://example.com", SecretCode: "VISIT123", RewardCents: cfg.DefaultRewardCents, CooldownSecs: cooldownSecs, Active: true},
		{TaskKey: domain.TaskClaimAirdrop, Name: "Claim Airdrop", URL: "https://example.com/airdrop", SecretCode: "AIRDROP123", RewardCents: cfg.DefaultRewardCents, CooldownSecs: cooldownSecs, Active: true},
	}
	for _, t := range tasks {
		var count int64
		db.Model(&models.TaskConfig{}).Where("task_key = ?", t.TaskKey).Count(&count)
		if count == 0 {
			if err := db.Create(&t).Error; err != nil {
				return err
			}
		}
	}

	return seedAdmin(db, cfg)
}

func seedAdmin(db *gorm.DB, cfg *config.EngineConfig) error {
	var count int64
	db.Model(&models.AdminUser{}).Where("email = ?", cfg.AdminEmail).Count(&count)
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.AdminUser{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("[seed] created admin user %s", cfg.AdminEmail)
	return nil
}
