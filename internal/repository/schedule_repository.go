package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleRepository defines the interface for payment schedule data access
type ScheduleRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PaymentSchedule, error)
	FindBySubscriptionAndDate(ctx context.Context, subscriptionID uint, day time.Time) (*models.PaymentSchedule, error)
	FindBySubscription(ctx context.Context, subscriptionID uint) ([]models.PaymentSchedule, error)
	FindFirstBySubscription(ctx context.Context, subscriptionID uint) (*models.PaymentSchedule, error)
	FindLatestBySubscription(ctx context.Context, subscriptionID uint) (*models.PaymentSchedule, error)
	FindMaxPeriod(ctx context.Context, subscriptionID uint) (int, error)
	CreateBatch(ctx context.Context, rows []models.PaymentSchedule) (int64, error)
	FindSettleableByMonth(ctx context.Context, cohort MonthCohort) ([]models.PaymentSchedule, error)
	FindSettleableByDate(ctx context.Context, cohort DateCohort) ([]models.PaymentSchedule, error)
	FindDue(ctx context.Context, query *ScheduleQuery, asOf time.Time) ([]models.PaymentSchedule, error)
	FindOverdue(ctx context.Context, query *ScheduleQuery, asOf time.Time) ([]models.PaymentSchedule, error)
	List(ctx context.Context, query *ScheduleQuery) ([]models.PaymentSchedule, int64, error)
}

// ScheduleQuery scopes schedule lookups to a cooperative, a subscription or a member
type ScheduleQuery struct {
	*ListQuery
	CooperativeID  uint
	SubscriptionID uint
	MemberID       uint
	PlanID         uint
}

// MonthCohort selects schedules due in a calendar month
type MonthCohort struct {
	CooperativeID    uint
	Year             int
	Month            time.Month
	PlanID           uint
	ExcludeMemberIDs []uint
}

// DateCohort selects one plan's schedules due on an exact day
type DateCohort struct {
	CooperativeID    uint
	PlanID           uint
	Date             time.Time
	ExcludeMemberIDs []uint
}

// unsettledStatuses are rows that still count towards due/overdue listings
var unsettledStatuses = []string{
	models.ScheduleStatusPending,
	models.ScheduleStatusPartial,
	models.ScheduleStatusOverdue,
}

type scheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*models.PaymentSchedule, error) {
	var row models.PaymentSchedule
	if err := r.db.WithContext(ctx).Preload("Subscription").First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *scheduleRepository) FindBySubscriptionAndDate(ctx context.Context, subscriptionID uint, day time.Time) (*models.PaymentSchedule, error) {
	start, end := dayBounds(day)
	var row models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND due_date >= ? AND due_date < ?", subscriptionID, start, end).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *scheduleRepository) FindBySubscription(ctx context.Context, subscriptionID uint) ([]models.PaymentSchedule, error) {
	var rows []models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("due_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *scheduleRepository) FindFirstBySubscription(ctx context.Context, subscriptionID uint) (*models.PaymentSchedule, error) {
	var row models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("period_number ASC, due_date ASC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *scheduleRepository) FindLatestBySubscription(ctx context.Context, subscriptionID uint) (*models.PaymentSchedule, error) {
	var row models.PaymentSchedule
	err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("due_date DESC, period_number DESC").
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindMaxPeriod returns the highest period number on the subscription, 0 when
// it has no rows
func (r *scheduleRepository) FindMaxPeriod(ctx context.Context, subscriptionID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Where("subscription_id = ?", subscriptionID).
		Select("COALESCE(MAX(period_number), 0)").
		Scan(&max).Error
	return max, err
}

// CreateBatch inserts rows, skipping any (subscription_id, due_date) pair that
// already exists. Returns the number of rows actually inserted.
func (r *scheduleRepository) CreateBatch(ctx context.Context, rows []models.PaymentSchedule) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Omit("Subscription").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "due_date"}},
			DoNothing: true,
		}).
		CreateInBatches(&rows, 100)
	return result.RowsAffected, result.Error
}

func (r *scheduleRepository) cohortBase(ctx context.Context, cooperativeID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Joins("JOIN contribution_subscriptions ON contribution_subscriptions.id = payment_schedules.subscription_id").
		Where("contribution_subscriptions.cooperative_id = ?", cooperativeID).
		Where("payment_schedules.status IN ?", models.SettleableScheduleStatuses)
}

func (r *scheduleRepository) FindSettleableByMonth(ctx context.Context, cohort MonthCohort) ([]models.PaymentSchedule, error) {
	start := time.Date(cohort.Year, cohort.Month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	db := r.cohortBase(ctx, cohort.CooperativeID).
		Where("payment_schedules.due_date >= ? AND payment_schedules.due_date < ?", start, end)
	if cohort.PlanID > 0 {
		db = db.Where("contribution_subscriptions.plan_id = ?", cohort.PlanID)
	}
	if len(cohort.ExcludeMemberIDs) > 0 {
		db = db.Where("contribution_subscriptions.member_id NOT IN ?", cohort.ExcludeMemberIDs)
	}

	var rows []models.PaymentSchedule
	err := db.Preload("Subscription.Plan").
		Order("payment_schedules.due_date ASC, payment_schedules.id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *scheduleRepository) FindSettleableByDate(ctx context.Context, cohort DateCohort) ([]models.PaymentSchedule, error) {
	start, end := dayBounds(cohort.Date)

	db := r.cohortBase(ctx, cohort.CooperativeID).
		Where("contribution_subscriptions.plan_id = ?", cohort.PlanID).
		Where("payment_schedules.due_date >= ? AND payment_schedules.due_date < ?", start, end)
	if len(cohort.ExcludeMemberIDs) > 0 {
		db = db.Where("contribution_subscriptions.member_id NOT IN ?", cohort.ExcludeMemberIDs)
	}

	var rows []models.PaymentSchedule
	err := db.Preload("Subscription.Plan").
		Order("payment_schedules.id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *scheduleRepository) scoped(ctx context.Context, query *ScheduleQuery) *gorm.DB {
	db := r.db.WithContext(ctx).
		Model(&models.PaymentSchedule{}).
		Joins("JOIN contribution_subscriptions ON contribution_subscriptions.id = payment_schedules.subscription_id")
	if query.CooperativeID > 0 {
		db = db.Where("contribution_subscriptions.cooperative_id = ?", query.CooperativeID)
	}
	if query.SubscriptionID > 0 {
		db = db.Where("payment_schedules.subscription_id = ?", query.SubscriptionID)
	}
	if query.MemberID > 0 {
		db = db.Where("contribution_subscriptions.member_id = ?", query.MemberID)
	}
	if query.PlanID > 0 {
		db = db.Where("contribution_subscriptions.plan_id = ?", query.PlanID)
	}
	return db
}

// FindDue returns unsettled rows due on or before asOf's day
func (r *scheduleRepository) FindDue(ctx context.Context, query *ScheduleQuery, asOf time.Time) ([]models.PaymentSchedule, error) {
	_, end := dayBounds(asOf)
	var rows []models.PaymentSchedule
	err := r.scoped(ctx, query).
		Where("payment_schedules.status IN ?", unsettledStatuses).
		Where("payment_schedules.due_date < ?", end).
		Preload("Subscription").
		Order("payment_schedules.due_date ASC, payment_schedules.id ASC").
		Find(&rows).Error
	return rows, err
}

// FindOverdue returns unsettled rows due strictly before asOf's day
func (r *scheduleRepository) FindOverdue(ctx context.Context, query *ScheduleQuery, asOf time.Time) ([]models.PaymentSchedule, error) {
	start, _ := dayBounds(asOf)
	var rows []models.PaymentSchedule
	err := r.scoped(ctx, query).
		Where("payment_schedules.status IN ?", unsettledStatuses).
		Where("payment_schedules.due_date < ?", start).
		Preload("Subscription").
		Order("payment_schedules.due_date ASC, payment_schedules.id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *scheduleRepository) List(ctx context.Context, query *ScheduleQuery) ([]models.PaymentSchedule, int64, error) {
	var rows []models.PaymentSchedule
	var total int64

	db := r.scoped(ctx, query)
	if status := query.Filter("status"); status != "" {
		db = db.Where("payment_schedules.status IN ?", splitStatuses(status))
	}
	if from := query.Filter("from"); from != "" {
		db = db.Where("payment_schedules.due_date >= ?", from)
	}
	if to := query.Filter("to"); to != "" {
		db = db.Where("payment_schedules.due_date <= ?", to)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = orderBy(db, query.ListQuery, map[string]string{
		"due_date":      "payment_schedules.due_date",
		"period_number": "payment_schedules.period_number",
		"amount":        "payment_schedules.amount",
	}, "payment_schedules.due_date ASC")

	err := paginate(db, query.ListQuery).Preload("Subscription").Find(&rows).Error
	return rows, total, err
}
