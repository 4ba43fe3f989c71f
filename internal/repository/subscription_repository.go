package repository

import (
	"context"
	"time"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
)

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ContributionSubscription, error)
	FindByPlanAndMember(ctx context.Context, planID, memberID uint) (*models.ContributionSubscription, error)
	Create(ctx context.Context, sub *models.ContributionSubscription) error
	Update(ctx context.Context, sub *models.ContributionSubscription) error
	List(ctx context.Context, query *SubscriptionQuery) ([]models.ContributionSubscription, int64, error)
	FindActiveContinuous(ctx context.Context) ([]models.ContributionSubscription, error)
	FindActiveWithoutScheduleOn(ctx context.Context, planID uint, day time.Time, excludeMemberIDs []uint) ([]models.ContributionSubscription, error)
}

// SubscriptionQuery extends ListQuery with subscription-specific filters
type SubscriptionQuery struct {
	*ListQuery
	CooperativeID uint
	PlanID        uint
	MemberID      uint
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id uint) (*models.ContributionSubscription, error) {
	var sub models.ContributionSubscription
	if err := r.db.WithContext(ctx).Preload("Plan").First(&sub, id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *subscriptionRepository) FindByPlanAndMember(ctx context.Context, planID, memberID uint) (*models.ContributionSubscription, error) {
	var sub models.ContributionSubscription
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND member_id = ?", planID, memberID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create fails with gorm.ErrDuplicatedKey when the member already holds a
// subscription to the plan
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.ContributionSubscription) error {
	err := r.db.WithContext(ctx).Omit("Plan").Create(sub).Error
	return translateUnique(err, "idx_subscription_plan_member")
}

// Update writes the mutable columns only. total_paid is owned by settlement.
func (r *subscriptionRepository) Update(ctx context.Context, sub *models.ContributionSubscription) error {
	return r.db.WithContext(ctx).
		Model(sub).
		Select("amount", "status", "paused_at", "cancelled_at", "updated_at").
		Updates(sub).Error
}

func (r *subscriptionRepository) List(ctx context.Context, query *SubscriptionQuery) ([]models.ContributionSubscription, int64, error) {
	var subs []models.ContributionSubscription
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ContributionSubscription{})
	if query.CooperativeID > 0 {
		db = db.Where("contribution_subscriptions.cooperative_id = ?", query.CooperativeID)
	}
	if query.PlanID > 0 {
		db = db.Where("contribution_subscriptions.plan_id = ?", query.PlanID)
	}
	if query.MemberID > 0 {
		db = db.Where("contribution_subscriptions.member_id = ?", query.MemberID)
	}
	if status := query.Filter("status"); status != "" {
		db = db.Where("contribution_subscriptions.status IN ?", splitStatuses(status))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = orderBy(db, query.ListQuery, map[string]string{
		"amount":        "contribution_subscriptions.amount",
		"total_paid":    "contribution_subscriptions.total_paid",
		"subscribed_at": "contribution_subscriptions.subscribed_at",
	}, "contribution_subscriptions.subscribed_at DESC")

	err := paginate(db, query.ListQuery).Preload("Plan").Find(&subs).Error
	return subs, total, err
}

// FindActiveContinuous returns active subscriptions on active continuous plans
func (r *subscriptionRepository) FindActiveContinuous(ctx context.Context) ([]models.ContributionSubscription, error) {
	var subs []models.ContributionSubscription
	err := r.db.WithContext(ctx).
		Joins("Plan").
		Where("contribution_subscriptions.status = ?", models.SubscriptionStatusActive).
		Where(`"Plan"."duration_type" = ? AND "Plan"."is_active" = ?`, models.DurationTypeContinuous, true).
		Order("contribution_subscriptions.id ASC").
		Find(&subs).Error
	return subs, err
}

// FindActiveWithoutScheduleOn returns active subscriptions on planID with no
// schedule row due on day
func (r *subscriptionRepository) FindActiveWithoutScheduleOn(ctx context.Context, planID uint, day time.Time, excludeMemberIDs []uint) ([]models.ContributionSubscription, error) {
	start, end := dayBounds(day)
	scheduled := r.db.Model(&models.PaymentSchedule{}).
		Select("subscription_id").
		Where("due_date >= ? AND due_date < ?", start, end)

	db := r.db.WithContext(ctx).
		Preload("Plan").
		Where("plan_id = ? AND status = ?", planID, models.SubscriptionStatusActive).
		Where("id NOT IN (?)", scheduled)
	if len(excludeMemberIDs) > 0 {
		db = db.Where("member_id NOT IN ?", excludeMemberIDs)
	}

	var subs []models.ContributionSubscription
	err := db.Order("id ASC").Find(&subs).Error
	return subs, err
}

// dayBounds returns the half-open UTC range covering t's calendar day
func dayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
