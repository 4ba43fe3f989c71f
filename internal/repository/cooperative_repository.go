package repository

import (
	"context"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
)

// CooperativeRepository defines the interface for cooperative and membership data access
type CooperativeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Cooperative, error)
	Create(ctx context.Context, coop *models.Cooperative) error
	FindMember(ctx context.Context, cooperativeID, memberID uint) (*models.CooperativeMember, error)
	SaveMember(ctx context.Context, member *models.CooperativeMember) error
	ListMembers(ctx context.Context, cooperativeID uint, query *ListQuery) ([]models.CooperativeMember, int64, error)
	FindMembersByRole(ctx context.Context, cooperativeID uint, roles ...string) ([]models.CooperativeMember, error)
}

type cooperativeRepository struct {
	db *gorm.DB
}

// NewCooperativeRepository creates a new cooperative repository
func NewCooperativeRepository(db *gorm.DB) CooperativeRepository {
	return &cooperativeRepository{db: db}
}

func (r *cooperativeRepository) FindByID(ctx context.Context, id uint) (*models.Cooperative, error) {
	var coop models.Cooperative
	if err := r.db.WithContext(ctx).First(&coop, id).Error; err != nil {
		return nil, err
	}
	return &coop, nil
}

func (r *cooperativeRepository) Create(ctx context.Context, coop *models.Cooperative) error {
	return r.db.WithContext(ctx).Create(coop).Error
}

func (r *cooperativeRepository) FindMember(ctx context.Context, cooperativeID, memberID uint) (*models.CooperativeMember, error) {
	var member models.CooperativeMember
	err := r.db.WithContext(ctx).
		Where("cooperative_id = ? AND member_id = ?", cooperativeID, memberID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// SaveMember creates or updates the membership profile. Balance is owned by
// settlement and is never written here.
func (r *cooperativeRepository) SaveMember(ctx context.Context, member *models.CooperativeMember) error {
	if member.ID == 0 {
		return r.db.WithContext(ctx).Omit("Cooperative").Create(member).Error
	}
	return r.db.WithContext(ctx).
		Model(member).
		Select("full_name", "email", "role", "permissions", "status", "updated_at").
		Updates(member).Error
}

func (r *cooperativeRepository) ListMembers(ctx context.Context, cooperativeID uint, query *ListQuery) ([]models.CooperativeMember, int64, error) {
	var members []models.CooperativeMember
	var total int64

	db := r.db.WithContext(ctx).Model(&models.CooperativeMember{}).Where("cooperative_id = ?", cooperativeID)
	if role := query.Filter("role"); role != "" {
		db = db.Where("role = ?", role)
	}
	if query.Search != "" {
		pattern := likePattern(query.Search)
		db = db.Where("LOWER(full_name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?", pattern, pattern)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = orderBy(db, query, map[string]string{
		"full_name": "full_name",
		"balance":   "balance",
	}, "member_id ASC")

	err := paginate(db, query).Find(&members).Error
	return members, total, err
}

func (r *cooperativeRepository) FindMembersByRole(ctx context.Context, cooperativeID uint, roles ...string) ([]models.CooperativeMember, error) {
	var members []models.CooperativeMember
	err := r.db.WithContext(ctx).
		Where("cooperative_id = ? AND role IN ? AND status = ?", cooperativeID, roles, models.MemberStatusActive).
		Find(&members).Error
	return members, err
}
