package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/statemachine"
	"github.com/sjperalta/fintera-coop/internal/storage"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// PaymentIntake is a member's payment against a subscription or one of its
// schedule rows. With a schedule and no amount, the row's outstanding
// amount is used.
type PaymentIntake struct {
	SubscriptionID   uint       `json:"subscription_id"`
	ScheduleID       *uint      `json:"schedule_id"`
	Amount           float64    `json:"amount" validate:"gte=0"`
	PaymentDate      *time.Time `json:"payment_date"`
	PaymentMethod    string     `json:"payment_method" validate:"omitempty,oneof=bank_transfer cash mobile_money card"`
	PaymentReference *string    `json:"payment_reference" validate:"omitempty,max=120"`
	ReceiptURL       *string    `json:"receipt_url"`
	Notes            *string    `json:"notes" validate:"omitempty,max=2000"`
}

// Decision is an approver's verdict on a pending payment
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecisionResult reports the payment after a decision and, for approvals,
// the balances the settlement left behind
type DecisionResult struct {
	Payment               *models.ContributionPayment `json:"payment"`
	Schedule              *models.PaymentSchedule     `json:"schedule,omitempty"`
	SubscriptionTotalPaid float64                     `json:"subscription_total_paid,omitempty"`
	MemberBalance         float64                     `json:"member_balance,omitempty"`
	CooperativeTotal      float64                     `json:"cooperative_total,omitempty"`
}

// ReceiptStore persists uploaded receipt files
type ReceiptStore interface {
	Save(r io.Reader, originalName, subDir string) (string, error)
}

type PaymentService struct {
	repo         repository.PaymentRepository
	subRepo      repository.SubscriptionRepository
	scheduleRepo repository.ScheduleRepository
	settlements  repository.SettlementRepository
	perms        *PermissionService
	events       EventPublisher
	receipts     ReceiptStore
	now          func() time.Time
}

func NewPaymentService(
	repo repository.PaymentRepository,
	subRepo repository.SubscriptionRepository,
	scheduleRepo repository.ScheduleRepository,
	settlements repository.SettlementRepository,
	perms *PermissionService,
	events EventPublisher,
	receipts ReceiptStore,
) *PaymentService {
	if events == nil {
		events = discardPublisher{}
	}
	return &PaymentService{
		repo:         repo,
		subRepo:      subRepo,
		scheduleRepo: scheduleRepo,
		settlements:  settlements,
		perms:        perms,
		events:       events,
		receipts:     receipts,
		now:          time.Now,
	}
}

// RecordPayment stores a pending payment from the subscription's owner.
// Paying against a schedule row links the row to the payment without
// changing its status.
func (s *PaymentService) RecordPayment(ctx context.Context, intake PaymentIntake, actorID uint) (*models.ContributionPayment, error) {
	if err := validateStruct(&intake); err != nil {
		return nil, err
	}

	var schedule *models.PaymentSchedule
	if intake.ScheduleID != nil {
		row, err := s.scheduleRepo.FindByID(ctx, *intake.ScheduleID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("schedule", *intake.ScheduleID)
		}
		if err != nil {
			return nil, err
		}
		if intake.SubscriptionID != 0 && intake.SubscriptionID != row.SubscriptionID {
			return nil, validationError("schedule %d does not belong to subscription %d", row.ID, intake.SubscriptionID)
		}
		intake.SubscriptionID = row.SubscriptionID
		schedule = row
	}
	if intake.SubscriptionID == 0 {
		return nil, validationError("subscription_id or schedule_id is required")
	}

	sub, err := s.subRepo.FindByID(ctx, intake.SubscriptionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("subscription", intake.SubscriptionID)
	}
	if err != nil {
		return nil, err
	}
	if sub.MemberID != actorID {
		return nil, ErrNotOwner
	}
	if !sub.IsActive() {
		return nil, ErrSubscriptionInactive
	}
	if schedule != nil && schedule.Status == models.ScheduleStatusPaid {
		return nil, ErrAlreadyPaid
	}

	amount := intake.Amount
	if amount == 0 && schedule != nil {
		amount = schedule.Outstanding()
	}
	if amount <= 0 {
		return nil, validationError("amount must be greater than zero")
	}

	now := s.now()
	payment := &models.ContributionPayment{
		SubscriptionID:   sub.ID,
		MemberID:         sub.MemberID,
		CooperativeID:    sub.CooperativeID,
		Amount:           amount,
		PaymentDate:      now,
		PaymentMethod:    intake.PaymentMethod,
		PaymentReference: sanitizeOptional(intake.PaymentReference),
		ReceiptURL:       intake.ReceiptURL,
		Notes:            sanitizeOptional(intake.Notes),
		Status:           models.PaymentStatusPending,
	}
	if intake.PaymentDate != nil {
		payment.PaymentDate = *intake.PaymentDate
	}
	if payment.PaymentMethod == "" {
		payment.PaymentMethod = models.PaymentMethodBankTransfer
	}

	if schedule != nil {
		due := schedule.DueDate
		payment.DueDate = &due
		err = s.repo.CreateForSchedule(ctx, payment, schedule.ID)
	} else {
		err = s.repo.Create(ctx, payment)
	}
	if errors.Is(err, repository.ErrScheduleAlreadyPaid) {
		return nil, ErrAlreadyPaid
	}
	if err != nil {
		return nil, err
	}

	logger.Info("payment submitted",
		"payment_id", payment.ID,
		"subscription_id", sub.ID,
		"member_id", sub.MemberID,
		"amount", payment.Amount,
	)
	meta := map[string]interface{}{"subscription_id": sub.ID, "plan_name": sub.Plan.Name}
	if schedule != nil {
		meta["schedule_id"] = schedule.ID
	}
	s.events.Publish(ctx, Event{
		Type:          EventPaymentSubmitted,
		ActorID:       actorID,
		CooperativeID: sub.CooperativeID,
		MemberID:      sub.MemberID,
		SubjectID:     payment.ID,
		Amount:        payment.Amount,
		Description:   fmt.Sprintf("Submitted payment of %s", formatMoney(payment.Amount)),
		Metadata:      meta,
	})

	return payment, nil
}

// DecidePayment approves or rejects a pending payment. Approval credits the
// subscription, the member and the cooperative in one transaction, then
// folds the amount into the linked schedule row.
func (s *PaymentService) DecidePayment(ctx context.Context, paymentID uint, decision Decision, reason string, actorID uint) (*DecisionResult, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, validationError("decision must be approve or reject")
	}

	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perms.Require(ctx, payment.CooperativeID, actorID, PermApprovePayments); err != nil {
		return nil, err
	}
	machine := statemachine.NewPaymentFSM(payment)

	planName := s.planName(ctx, payment.SubscriptionID)
	now := s.now()

	if decision == DecisionReject {
		if !payment.MayReject() {
			return nil, ErrAlreadyProcessed
		}
		reason = sanitizeText(reason)
		if reason == "" {
			return nil, ErrMissingReason
		}
		if err := machine.Reject(ctx); err != nil {
			return nil, ErrAlreadyProcessed
		}
		rejected, err := s.settlements.RejectPayment(ctx, repository.RejectionInput{
			PaymentID: paymentID,
			ActorID:   actorID,
			Reason:    reason,
			At:        now,
		})
		if errors.Is(err, repository.ErrPaymentNotPending) {
			return nil, ErrAlreadyProcessed
		}
		if err != nil {
			return nil, err
		}

		logger.Info("payment rejected", "payment_id", paymentID, "actor_id", actorID)
		s.events.Publish(ctx, Event{
			Type:          EventPaymentRejected,
			ActorID:       actorID,
			CooperativeID: rejected.CooperativeID,
			MemberID:      rejected.MemberID,
			SubjectID:     rejected.ID,
			Amount:        rejected.Amount,
			Description:   fmt.Sprintf("Rejected payment #%d: %s", rejected.ID, reason),
			Metadata:      map[string]interface{}{"reason": reason, "plan_name": planName},
		})
		return &DecisionResult{Payment: rejected}, nil
	}

	if err := machine.Approve(ctx); err != nil {
		return nil, ErrAlreadyProcessed
	}
	settlement, err := s.settlements.ApprovePayment(ctx, repository.ApprovalInput{
		PaymentID: paymentID,
		ActorID:   actorID,
		At:        now,
	})
	if errors.Is(err, repository.ErrPaymentNotPending) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		return nil, err
	}

	result := &DecisionResult{
		Payment:               settlement.Payment,
		SubscriptionTotalPaid: settlement.SubscriptionTotalPaid,
		MemberBalance:         settlement.MemberBalance,
		CooperativeTotal:      settlement.CooperativeTotal,
	}

	// the settlement is committed; a failure here leaves the row to be reconciled
	schedule, err := s.settlements.ApplyToSchedule(ctx, paymentID, settlement.Payment.Amount, now)
	if err != nil {
		logger.Warn("failed to apply approved payment to schedule", "payment_id", paymentID, logger.Err(err))
	}
	result.Schedule = schedule

	logger.Info("payment approved",
		"payment_id", paymentID,
		"actor_id", actorID,
		"amount", settlement.Payment.Amount,
		"member_balance", settlement.MemberBalance,
	)
	s.events.Publish(ctx, Event{
		Type:          EventPaymentApproved,
		ActorID:       actorID,
		CooperativeID: settlement.Payment.CooperativeID,
		MemberID:      settlement.Payment.MemberID,
		SubjectID:     settlement.Payment.ID,
		Amount:        settlement.Payment.Amount,
		Description:   fmt.Sprintf("Approved payment #%d", settlement.Payment.ID),
		Metadata: map[string]interface{}{
			"plan_name":      planName,
			"member_balance": settlement.MemberBalance,
			"ledger_entry":   settlement.Ledger.ID,
		},
	})
	return result, nil
}

// AttachReceipt stores a receipt file and links it to the payment. Only the
// payer may attach, and only while the payment is pending.
func (s *PaymentService) AttachReceipt(ctx context.Context, paymentID uint, file io.Reader, filename, contentType string, actorID uint) (*models.ContributionPayment, error) {
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != actorID {
		return nil, ErrNotOwner
	}
	if payment.IsTerminal() {
		return nil, ErrAlreadyProcessed
	}
	if !storage.IsValidContentType(contentType) {
		return nil, validationError("unsupported receipt type %s", contentType)
	}
	if s.receipts == nil {
		return nil, errors.New("receipt storage is not configured")
	}

	file, filename, err = prepareReceipt(file, filename, contentType)
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, validationError("receipt exceeds %d bytes", storage.MaxFileSize())
	}
	if err != nil {
		return nil, err
	}

	path, err := s.receipts.Save(file, filename, "receipts")
	if errors.Is(err, storage.ErrTooLarge) {
		return nil, validationError("receipt exceeds %d bytes", storage.MaxFileSize())
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateReceipt(ctx, paymentID, path); err != nil {
		return nil, err
	}
	payment.ReceiptURL = &path
	return payment, nil
}

// GetPayment returns a payment to its payer or to members who view everything
func (s *PaymentService) GetPayment(ctx context.Context, paymentID, actorID uint) (*models.ContributionPayment, error) {
	payment, err := s.find(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	member, err := s.perms.Membership(ctx, payment.CooperativeID, actorID)
	if err != nil {
		return nil, err
	}
	if payment.MemberID != actorID && !s.perms.Allows(member, PermViewAll) && !s.perms.Allows(member, PermApprovePayments) {
		return nil, ErrNotOwner
	}
	return payment, nil
}

// ListPayments lists a cooperative's payments; members without view_all
// only see their own
func (s *PaymentService) ListPayments(ctx context.Context, query *repository.PaymentQuery, actorID uint) ([]models.ContributionPayment, int64, error) {
	if query.CooperativeID == 0 {
		return nil, 0, validationError("cooperative_id is required")
	}
	member, err := s.perms.Membership(ctx, query.CooperativeID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !s.perms.Allows(member, PermViewAll) && !s.perms.Allows(member, PermApprovePayments) {
		if query.MemberID != 0 && query.MemberID != actorID {
			return nil, 0, permissionError(PermViewAll)
		}
		query.MemberID = actorID
	}
	return s.repo.List(ctx, query)
}

func (s *PaymentService) find(ctx context.Context, paymentID uint) (*models.ContributionPayment, error) {
	payment, err := s.repo.FindByID(ctx, paymentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("payment", paymentID)
	}
	return payment, err
}

func (s *PaymentService) planName(ctx context.Context, subscriptionID uint) string {
	sub, err := s.subRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return ""
	}
	return sub.Plan.Name
}
