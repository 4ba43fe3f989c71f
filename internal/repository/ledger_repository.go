package repository

import (
	"context"

	"github.com/sjperalta/fintera-coop/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository reads member ledger entries. Entries are written only by
// the settlement repository and never updated or deleted.
type LedgerRepository interface {
	FindByMember(ctx context.Context, cooperativeID, memberID uint, query *ListQuery) ([]models.LedgerEntry, int64, error)
	FindByReference(ctx context.Context, paymentID uint) ([]models.LedgerEntry, error)
	SumByMember(ctx context.Context, cooperativeID, memberID uint) (float64, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) FindByMember(ctx context.Context, cooperativeID, memberID uint, query *ListQuery) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	db := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("cooperative_id = ? AND member_id = ?", cooperativeID, memberID)
	if entryType := query.Filter("type"); entryType != "" {
		db = db.Where("type = ?", entryType)
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(db.Order("created_at ASC, id ASC"), query).Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepository) FindByReference(ctx context.Context, paymentID uint) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", paymentID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// SumByMember totals every entry for the member; equals their balance when the
// ledger and counters agree
func (r *ledgerRepository) SumByMember(ctx context.Context, cooperativeID, memberID uint) (float64, error) {
	var result struct {
		Balance float64
	}

	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0) as balance").
		Where("cooperative_id = ? AND member_id = ?", cooperativeID, memberID).
		Scan(&result).Error

	return result.Balance, err
}
