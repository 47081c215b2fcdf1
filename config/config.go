package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Engine   EngineConfig
	Telegram TelegramConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// EngineConfig carries the ledger defaults that seed the settings table and
// task catalog on first boot. After seeding, the database rows are
// authoritative; admins change values there, not here.
type EngineConfig struct {
	ServiceToken       string // bearer token the bot collaborator calls with
	MinWithdrawalCents int64
	ReferralBonusCents int64
	DefaultRewardCents int64
	DefaultCooldown    time.Duration
	PaymentChannel     string
	AdminEmail         string
	AdminPassword      string
}

// TelegramConfig configures the outbound notifier. An empty token disables
// it and notifications fall back to the log notifier.
type TelegramConfig struct {
	BotToken    string
	AdminChatID int64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_DSN", "earnledger:earnledger@tcp(localhost:3306)/earnledger?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_SECRET", "change-me-in-production"),
			AccessExpiry: 12 * time.Hour,
			Issuer:       "earnledger",
		},
		Engine: EngineConfig{
			ServiceToken:       getEnv("SERVICE_TOKEN", "change-me-service-token"),
			MinWithdrawalCents: getEnvInt64("MIN_WITHDRAWAL_CENTS", 1000),
			ReferralBonusCents: getEnvInt64("REFERRAL_BONUS_CENTS", 50),
			DefaultRewardCents: getEnvInt64("TASK_REWARD_CENTS", 10),
			DefaultCooldown:    getEnvDuration("TASK_COOLDOWN", 24*time.Hour),
			PaymentChannel:     getEnv("PAYMENT_CHANNEL", "@YourPaymentChannel"),
			AdminEmail:         getEnv("ADMIN_EMAIL", "admin@earnledger.local"),
			AdminPassword:      getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Telegram: TelegramConfig{
			BotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID: getEnvInt64("TELEGRAM_ADMIN_CHAT_ID", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
