// Package testutil provides in-memory databases and fixtures for package tests.
package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sjperalta/fintera-coop/internal/database"
	"github.com/sjperalta/fintera-coop/internal/models"
)

// NewDB opens a migrated in-memory SQLite database. A single connection keeps
// every statement on the same in-memory schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// Date returns midnight UTC on the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }

// Fixture seeds a cooperative with an admin for tests
type Fixture struct {
	DB          *gorm.DB
	Cooperative *models.Cooperative
	Admin       *models.CooperativeMember
}

// NewFixture creates a cooperative and an admin member (member id 1)
func NewFixture(t *testing.T, db *gorm.DB) *Fixture {
	t.Helper()

	coop := &models.Cooperative{Name: "Test Cooperative", Currency: "NGN"}
	require.NoError(t, db.Create(coop).Error)

	admin := &models.CooperativeMember{
		CooperativeID: coop.ID,
		MemberID:      1,
		FullName:      "Ada Admin",
		Role:          models.RoleAdmin,
		Status:        models.MemberStatusActive,
	}
	require.NoError(t, db.Omit("Cooperative").Create(admin).Error)

	return &Fixture{DB: db, Cooperative: coop, Admin: admin}
}

// AddMember registers memberID in the fixture cooperative with role
func (f *Fixture) AddMember(t *testing.T, memberID uint, role string) *models.CooperativeMember {
	t.Helper()
	m := &models.CooperativeMember{
		CooperativeID: f.Cooperative.ID,
		MemberID:      memberID,
		FullName:      "Member",
		Role:          role,
		Status:        models.MemberStatusActive,
	}
	require.NoError(t, f.DB.Omit("Cooperative").Create(m).Error)
	return m
}

// FixedMonthlyPlan creates an active continuous monthly plan of amount starting on start
func (f *Fixture) FixedMonthlyPlan(t *testing.T, amount float64, start time.Time) *models.ContributionPlan {
	t.Helper()
	freq := models.FrequencyMonthly
	plan := &models.ContributionPlan{
		CooperativeID:    f.Cooperative.ID,
		Name:             "Monthly savings",
		Category:         models.PlanCategoryCompulsory,
		ContributionType: models.ContributionTypeFixed,
		FixedAmount:      &amount,
		DurationType:     models.DurationTypeContinuous,
		Frequency:        &freq,
		StartDate:        start,
		IsActive:         true,
		CreatedBy:        f.Admin.MemberID,
	}
	require.NoError(t, f.DB.Omit("Cooperative").Create(plan).Error)
	return plan
}

// Subscribe creates an active subscription for memberID on plan
func (f *Fixture) Subscribe(t *testing.T, plan *models.ContributionPlan, memberID uint, amount float64, at time.Time) *models.ContributionSubscription {
	t.Helper()
	sub := &models.ContributionSubscription{
		PlanID:        plan.ID,
		MemberID:      memberID,
		CooperativeID: plan.CooperativeID,
		Amount:        amount,
		Status:        models.SubscriptionStatusActive,
		SubscribedAt:  at,
	}
	require.NoError(t, f.DB.Omit("Plan").Create(sub).Error)
	return sub
}

// Schedule inserts a pending schedule row for sub due on day
func (f *Fixture) Schedule(t *testing.T, sub *models.ContributionSubscription, day time.Time, period int) *models.PaymentSchedule {
	t.Helper()
	row := &models.PaymentSchedule{
		SubscriptionID: sub.ID,
		DueDate:        day,
		Amount:         sub.Amount,
		PeriodNumber:   period,
		PeriodLabel:    day.Format("January 2006"),
		Status:         models.ScheduleStatusPending,
	}
	require.NoError(t, f.DB.Omit("Subscription").Create(row).Error)
	return row
}

// PendingPayment inserts a pending payment for sub
func (f *Fixture) PendingPayment(t *testing.T, sub *models.ContributionSubscription, amount float64) *models.ContributionPayment {
	t.Helper()
	p := &models.ContributionPayment{
		SubscriptionID: sub.ID,
		MemberID:       sub.MemberID,
		CooperativeID:  sub.CooperativeID,
		Amount:         amount,
		PaymentDate:    time.Now().UTC(),
		PaymentMethod:  models.PaymentMethodBankTransfer,
		Status:         models.PaymentStatusPending,
	}
	require.NoError(t, f.DB.Omit("Subscription").Create(p).Error)
	return p
}

// FailInsertsInto makes every insert into table fail while match returns true
func FailInsertsInto(t *testing.T, db *gorm.DB, table string, match func(*gorm.DB) bool) {
	t.Helper()
	name := "testutil:fail_" + table
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table && (match == nil || match(tx)) {
			_ = tx.AddError(ErrSimulated)
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

// ErrSimulated is the error injected by FailInsertsInto
var ErrSimulated = errors.New("simulated failure")
