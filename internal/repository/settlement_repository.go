package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sjperalta/fintera-coop/internal/models"
	"gorm.io/gorm"
)

// SettlementRepository applies approved money to the payment, subscription,
// member balance, cooperative aggregate and ledger in a single transaction.
// Double settlement is prevented by conditional status updates: a unit that
// does not observe the expected status touches nothing.
type SettlementRepository interface {
	ApprovePayment(ctx context.Context, in ApprovalInput) (*Settlement, error)
	RejectPayment(ctx context.Context, in RejectionInput) (*models.ContributionPayment, error)
	SettleSchedule(ctx context.Context, in ScheduleSettlementInput) (*Settlement, error)
	ApplyToSchedule(ctx context.Context, paymentID uint, amount float64, at time.Time) (*models.PaymentSchedule, error)
}

// ApprovalInput identifies a pending payment and who approves it
type ApprovalInput struct {
	PaymentID uint
	ActorID   uint
	At        time.Time
}

// RejectionInput identifies a pending payment, who rejects it and why
type RejectionInput struct {
	PaymentID uint
	ActorID   uint
	Reason    string
	At        time.Time
}

// ScheduleSettlementInput settles one schedule row with a new approved payment
type ScheduleSettlementInput struct {
	ScheduleID       uint
	ActorID          uint
	PaymentMethod    string
	PaymentReference *string
	Notes            *string
	BulkRunID        *string
	At               time.Time
}

// Settlement reports the state of every record a committed unit touched
type Settlement struct {
	Payment               *models.ContributionPayment
	Schedule              *models.PaymentSchedule
	Ledger                *models.LedgerEntry
	SubscriptionTotalPaid float64
	MemberBalance         float64
	CooperativeTotal      float64
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) ApprovePayment(ctx context.Context, in ApprovalInput) (*Settlement, error) {
	var settlement *Settlement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ContributionPayment{}).
			Where("id = ? AND status = ?", in.PaymentID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":      models.PaymentStatusApproved,
				"approved_by": in.ActorID,
				"approved_at": in.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotPending
		}

		var payment models.ContributionPayment
		if err := tx.First(&payment, in.PaymentID).Error; err != nil {
			return err
		}

		s, err := applyCredit(tx, &payment, in.ActorID, fmt.Sprintf("Contribution payment #%d", payment.ID))
		if err != nil {
			return err
		}
		settlement = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *settlementRepository) RejectPayment(ctx context.Context, in RejectionInput) (*models.ContributionPayment, error) {
	var payment models.ContributionPayment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ContributionPayment{}).
			Where("id = ? AND status = ?", in.PaymentID, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":           models.PaymentStatusRejected,
				"rejection_reason": in.Reason,
				"approved_by":      in.ActorID,
				"approved_at":      in.At,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentNotPending
		}
		return tx.First(&payment, in.PaymentID).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// SettleSchedule creates an approved payment for the row's outstanding amount,
// marks the row paid and credits every balance, all or nothing
func (r *settlementRepository) SettleSchedule(ctx context.Context, in ScheduleSettlementInput) (*Settlement, error) {
	var settlement *Settlement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PaymentSchedule
		if err := tx.Preload("Subscription").First(&row, in.ScheduleID).Error; err != nil {
			return err
		}
		if !slices.Contains(models.SettleableScheduleStatuses, row.Status) {
			return ErrScheduleNotSettleable
		}
		amount := row.Amount - row.PaidAmount
		if amount <= 0 {
			return ErrScheduleNotSettleable
		}

		dueDate := row.DueDate
		actorID := in.ActorID
		at := in.At
		payment := &models.ContributionPayment{
			SubscriptionID:   row.SubscriptionID,
			MemberID:         row.Subscription.MemberID,
			CooperativeID:    row.Subscription.CooperativeID,
			Amount:           amount,
			PaymentDate:      at,
			DueDate:          &dueDate,
			PaymentMethod:    in.PaymentMethod,
			PaymentReference: in.PaymentReference,
			Notes:            in.Notes,
			Status:           models.PaymentStatusApproved,
			ApprovedBy:       &actorID,
			ApprovedAt:       &at,
			BulkRunID:        in.BulkRunID,
		}
		if err := tx.Omit("Subscription").Create(payment).Error; err != nil {
			return err
		}

		res := tx.Model(&models.PaymentSchedule{}).
			Where("id = ? AND status IN ?", row.ID, models.SettleableScheduleStatuses).
			Updates(map[string]interface{}{
				"status":      models.ScheduleStatusPaid,
				"paid_amount": gorm.Expr("paid_amount + ?", amount),
				"paid_at":     at,
				"payment_id":  payment.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrScheduleNotSettleable
		}

		label := row.PeriodLabel
		if label == "" {
			label = row.DueDate.Format("2006-01-02")
		}
		s, err := applyCredit(tx, payment, in.ActorID, fmt.Sprintf("Contribution for %s", label))
		if err != nil {
			return err
		}

		row.Status = models.ScheduleStatusPaid
		row.PaidAmount += amount
		row.PaidAt = &at
		row.PaymentID = &payment.ID
		s.Schedule = &row
		settlement = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// ApplyToSchedule folds an approved amount into the row linked to paymentID.
// The increment and the status change are computed by the database, so a
// concurrent settlement of the same row cannot be overwritten. paid_at is
// only stamped on the move to paid. Returns nil when no row is linked.
func (r *settlementRepository) ApplyToSchedule(ctx context.Context, paymentID uint, amount float64, at time.Time) (*models.PaymentSchedule, error) {
	var updated *models.PaymentSchedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PaymentSchedule{}).
			Where("payment_id = ?", paymentID).
			Updates(map[string]interface{}{
				"paid_amount": gorm.Expr("paid_amount + ?", amount),
				"status": gorm.Expr("CASE WHEN paid_amount + ? >= amount THEN ? WHEN paid_amount + ? > 0 THEN ? ELSE status END",
					amount, models.ScheduleStatusPaid, amount, models.ScheduleStatusPartial),
				"paid_at": gorm.Expr("CASE WHEN status <> ? AND paid_amount + ? >= amount THEN ? ELSE paid_at END",
					models.ScheduleStatusPaid, amount, at),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var row models.PaymentSchedule
		if err := tx.Where("payment_id = ?", paymentID).First(&row).Error; err != nil {
			return err
		}
		updated = &row
		return nil
	})
	return updated, err
}

// applyCredit increments the subscription, member and cooperative counters by
// the payment amount and appends the ledger entry carrying the new balance
func applyCredit(tx *gorm.DB, payment *models.ContributionPayment, actorID uint, description string) (*Settlement, error) {
	amount := payment.Amount

	res := tx.Model(&models.ContributionSubscription{}).
		Where("id = ?", payment.SubscriptionID).
		Update("total_paid", gorm.Expr("total_paid + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("increment subscription total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("increment subscription total: %w", gorm.ErrRecordNotFound)
	}

	balance, err := creditMember(tx, payment.CooperativeID, payment.MemberID, amount)
	if err != nil {
		return nil, fmt.Errorf("credit member balance: %w", err)
	}

	res = tx.Model(&models.Cooperative{}).
		Where("id = ?", payment.CooperativeID).
		Update("total_contributions", gorm.Expr("total_contributions + ?", amount))
	if res.Error != nil {
		return nil, fmt.Errorf("increment cooperative total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrCooperativeNotFound
	}

	paymentID := payment.ID
	entry := &models.LedgerEntry{
		CooperativeID: payment.CooperativeID,
		MemberID:      payment.MemberID,
		Type:          models.LedgerTypeContribution,
		Amount:        amount,
		BalanceAfter:  balance,
		ReferenceID:   &paymentID,
		Description:   description,
		CreatedBy:     actorID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	var sub models.ContributionSubscription
	if err := tx.Select("id", "total_paid").First(&sub, payment.SubscriptionID).Error; err != nil {
		return nil, err
	}
	var coop models.Cooperative
	if err := tx.Select("id", "total_contributions").First(&coop, payment.CooperativeID).Error; err != nil {
		return nil, err
	}

	return &Settlement{
		Payment:               payment,
		Ledger:                entry,
		SubscriptionTotalPaid: sub.TotalPaid,
		MemberBalance:         balance,
		CooperativeTotal:      coop.TotalContributions,
	}, nil
}

// creditMember adds amount to the member's balance, creating the membership
// row on first credit, and returns the balance after the increment
func creditMember(tx *gorm.DB, cooperativeID, memberID uint, amount float64) (float64, error) {
	res := tx.Model(&models.CooperativeMember{}).
		Where("cooperative_id = ? AND member_id = ?", cooperativeID, memberID).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		member := &models.CooperativeMember{
			CooperativeID: cooperativeID,
			MemberID:      memberID,
			Role:          models.RoleMember,
			Status:        models.MemberStatusActive,
			Balance:       amount,
		}
		if err := tx.Omit("Cooperative").Create(member).Error; err != nil {
			return 0, err
		}
		return amount, nil
	}

	var member models.CooperativeMember
	err := tx.Select("id", "balance").
		Where("cooperative_id = ? AND member_id = ?", cooperativeID, memberID).
		First(&member).Error
	return member.Balance, err
}
