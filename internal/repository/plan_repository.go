package repository

import (
	"context"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
)

// PlanRepository defines the interface for contribution plan data access
type PlanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ContributionPlan, error)
	Create(ctx context.Context, plan *models.ContributionPlan) error
	Update(ctx context.Context, plan *models.ContributionPlan) error
	List(ctx context.Context, cooperativeID uint, query *ListQuery) ([]models.ContributionPlan, int64, error)
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) FindByID(ctx context.Context, id uint) (*models.ContributionPlan, error) {
	var plan models.ContributionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) Create(ctx context.Context, plan *models.ContributionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *planRepository) Update(ctx context.Context, plan *models.ContributionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *planRepository) List(ctx context.Context, cooperativeID uint, query *ListQuery) ([]models.ContributionPlan, int64, error) {
	var plans []models.ContributionPlan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ContributionPlan{}).Where("cooperative_id = ?", cooperativeID)

	switch query.Filter("is_active") {
	case "true":
		db = db.Where("is_active = ?", true)
	case "false":
		db = db.Where("is_active = ?", false)
	}
	if category := query.Filter("category"); category != "" {
		db = db.Where("category = ?", category)
	}
	if duration := query.Filter("duration_type"); duration != "" {
		db = db.Where("duration_type = ?", duration)
	}
	if query.Search != "" {
		db = db.Where("LOWER(name) LIKE ?", likePattern(query.Search))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = orderBy(db, query, map[string]string{
		"name":       "name",
		"start_date": "start_date",
		"created_at": "created_at",
	}, "created_at DESC")

	err := paginate(db, query).Find(&plans).Error
	return plans, total, err
}
