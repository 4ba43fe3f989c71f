package database

import (
	"fmt"
	"time"

	"github.com/sjperalta/fintera-coop/internal/models"
	pkgLogger "github.com/sjperalta/fintera-coop/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect establishes a connection to the PostgreSQL database
func Connect(databaseURL, environment string) (*gorm.DB, error) {
	logLevel := logger.Warn
	if environment == "development" {
		logLevel = logger.Info
	}

	gormLogger := pkgLogger.NewGormLogger(
		logLevel,
		200*time.Millisecond,
	)

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Models lists every persisted type in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.Cooperative{},
		&models.CooperativeMember{},
		&models.ContributionPlan{},
		&models.ContributionSubscription{},
		&models.PaymentSchedule{},
		&models.ContributionPayment{},
		&models.LedgerEntry{},
		&models.Notification{},
		&models.AuditLog{},
	}
}

// AutoMigrate creates or updates tables from the model definitions. Used for
// throwaway databases; deployed schemas go through goose.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
