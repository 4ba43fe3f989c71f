package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// JWT
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Storage
	StoragePath string `envconfig:"STORAGE_PATH" default:"./storage"`

	// Background Workers
	WorkerCount int `envconfig:"WORKER_COUNT" default:"5"`

	// CORS
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Sentry
	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Redis is optional; without it bulk runs are not locked across instances
	RedisURL string `envconfig:"REDIS_URL"`

	// Email (SMTP)
	SMTP SMTPConfig

	// Scheduling
	ScheduleLookAheadMonths int           `envconfig:"SCHEDULE_LOOKAHEAD_MONTHS" default:"12"`
	ExtendSchedulesEvery    time.Duration `envconfig:"EXTEND_SCHEDULES_EVERY" default:"24h"`
	BulkLockTTL             time.Duration `envconfig:"BULK_LOCK_TTL" default:"10m"`

	// Permissions: load casbin policies from the database instead of the built-in defaults
	CasbinUseDB bool `envconfig:"CASBIN_USE_DB" default:"false"`
}

// SMTPConfig configures outgoing notification mail. Host empty disables e-mail.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"noreply@cooperativa.app"`
}

// Enabled reports whether SMTP delivery is configured
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.ScheduleLookAheadMonths <= 0 {
		cfg.ScheduleLookAheadMonths = 12
	}

	return &cfg, nil
}
