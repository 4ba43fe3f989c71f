package repository

import (
	"context"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for contribution payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ContributionPayment, error)
	Create(ctx context.Context, payment *models.ContributionPayment) error
	CreateForSchedule(ctx context.Context, payment *models.ContributionPayment, scheduleID uint) error
	UpdateReceipt(ctx context.Context, id uint, receiptURL string) error
	List(ctx context.Context, query *PaymentQuery) ([]models.ContributionPayment, int64, error)
}

// PaymentQuery extends ListQuery with payment-specific filters
type PaymentQuery struct {
	*ListQuery
	CooperativeID  uint
	SubscriptionID uint
	MemberID       uint
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.ContributionPayment, error) {
	var payment models.ContributionPayment
	if err := r.db.WithContext(ctx).First(&payment, id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.ContributionPayment) error {
	return r.db.WithContext(ctx).Omit("Subscription").Create(payment).Error
}

// CreateForSchedule inserts payment and links it to the schedule row in one
// transaction. The row's status and paid amount are left for approval.
func (r *paymentRepository) CreateForSchedule(ctx context.Context, payment *models.ContributionPayment, scheduleID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Subscription").Create(payment).Error; err != nil {
			return err
		}
		res := tx.Model(&models.PaymentSchedule{}).
			Where("id = ? AND status <> ?", scheduleID, models.ScheduleStatusPaid).
			Update("payment_id", payment.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrScheduleAlreadyPaid
		}
		return nil
	})
}

func (r *paymentRepository) UpdateReceipt(ctx context.Context, id uint, receiptURL string) error {
	res := r.db.WithContext(ctx).
		Model(&models.ContributionPayment{}).
		Where("id = ?", id).
		Update("receipt_url", receiptURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepository) List(ctx context.Context, query *PaymentQuery) ([]models.ContributionPayment, int64, error) {
	var payments []models.ContributionPayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ContributionPayment{})
	if query.CooperativeID > 0 {
		db = db.Where("cooperative_id = ?", query.CooperativeID)
	}
	if query.SubscriptionID > 0 {
		db = db.Where("subscription_id = ?", query.SubscriptionID)
	}
	if query.MemberID > 0 {
		db = db.Where("member_id = ?", query.MemberID)
	}
	if status := query.Filter("status"); status != "" {
		db = db.Where("status IN ?", splitStatuses(status))
	}
	if method := query.Filter("payment_method"); method != "" {
		db = db.Where("payment_method = ?", method)
	}
	if run := query.Filter("bulk_run_id"); run != "" {
		db = db.Where("bulk_run_id = ?", run)
	}
	if from := query.Filter("start_date"); from != "" {
		db = db.Where("payment_date >= ?", from)
	}
	if to := query.Filter("end_date"); to != "" {
		if len(to) == 10 { // YYYY-MM-DD
			to += " 23:59:59"
		}
		db = db.Where("payment_date <= ?", to)
	}
	if query.Search != "" {
		db = db.Where("LOWER(COALESCE(payment_reference, '')) LIKE ?", likePattern(query.Search))
	}

	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// pending first so approvers see their queue on page one
	db = db.Order("CASE WHEN status = '" + models.PaymentStatusPending + "' THEN 0 ELSE 1 END ASC")
	db = orderBy(db, query.ListQuery, map[string]string{
		"amount":       "amount",
		"payment_date": "payment_date",
		"created_at":   "created_at",
	}, "created_at DESC")

	err := paginate(db, query.ListQuery).Find(&payments).Error
	return payments, total, err
}
