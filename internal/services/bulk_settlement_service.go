package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/lock"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// BulkMonthRequest settles every open row due in a calendar month
type BulkMonthRequest struct {
	CooperativeID    uint    `json:"cooperative_id" validate:"required"`
	Year             int     `json:"year" validate:"required,gte=2000,lte=2100"`
	Month            int     `json:"month" validate:"required,gte=1,lte=12"`
	PlanID           *uint   `json:"plan_id"`
	ExcludeMemberIDs []uint  `json:"exclude_member_ids"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference *string `json:"payment_reference"`
	Notes            *string `json:"notes"`
}

// BulkDateRequest settles one plan's rows due on an exact day. Active
// subscriptions with no row that day get one unless
// IncludeMissingSchedules is explicitly false.
type BulkDateRequest struct {
	CooperativeID           uint      `json:"cooperative_id" validate:"required"`
	PlanID                  uint      `json:"plan_id" validate:"required"`
	Date                    time.Time `json:"date" validate:"required"`
	ExcludeMemberIDs        []uint    `json:"exclude_member_ids"`
	IncludeMissingSchedules *bool     `json:"include_missing_schedules"`
	PaymentMethod           string    `json:"payment_method"`
	PaymentReference        *string   `json:"payment_reference"`
	Notes                   *string   `json:"notes"`
}

// BulkFailure is one row a run could not settle
type BulkFailure struct {
	ScheduleID uint   `json:"schedule_id"`
	MemberID   uint   `json:"member_id"`
	Error      string `json:"error"`
}

// BulkResult summarizes a bulk run
type BulkResult struct {
	BulkRunID             string        `json:"bulk_run_id"`
	ApprovedCount         int           `json:"approved_count"`
	CreatedSchedulesCount int64         `json:"created_schedules_count"`
	TotalAmount           float64       `json:"total_amount"`
	SkippedCount          int           `json:"skipped_count"`
	Failures              []BulkFailure `json:"failures,omitempty"`
}

// settleOptions carries what every row in one run shares
type settleOptions struct {
	cooperativeID uint
	actorID       uint
	method        string
	reference     *string
	notes         *string
	lockName      string
	describe      string
}

type BulkSettlementService struct {
	scheduleRepo repository.ScheduleRepository
	subRepo      repository.SubscriptionRepository
	planRepo     repository.PlanRepository
	settlements  repository.SettlementRepository
	perms        *PermissionService
	events       EventPublisher
	locker       lock.Locker
	lockTTL      time.Duration
	now          func() time.Time
}

func NewBulkSettlementService(
	scheduleRepo repository.ScheduleRepository,
	subRepo repository.SubscriptionRepository,
	planRepo repository.PlanRepository,
	settlements repository.SettlementRepository,
	perms *PermissionService,
	events EventPublisher,
	locker lock.Locker,
	lockTTL time.Duration,
) *BulkSettlementService {
	if events == nil {
		events = discardPublisher{}
	}
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &BulkSettlementService{
		scheduleRepo: scheduleRepo,
		subRepo:      subRepo,
		planRepo:     planRepo,
		settlements:  settlements,
		perms:        perms,
		events:       events,
		locker:       locker,
		lockTTL:      lockTTL,
		now:          time.Now,
	}
}

// BulkSettleByMonth settles pending and overdue rows due in the month.
// Subscription status is not consulted; the cohort is whatever rows exist.
func (s *BulkSettlementService) BulkSettleByMonth(ctx context.Context, req BulkMonthRequest, actorID uint) (*BulkResult, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if _, err := s.perms.Require(ctx, req.CooperativeID, actorID, PermApprovePayments); err != nil {
		return nil, err
	}

	cohort := repository.MonthCohort{
		CooperativeID:    req.CooperativeID,
		Year:             req.Year,
		Month:            time.Month(req.Month),
		ExcludeMemberIDs: req.ExcludeMemberIDs,
	}
	scope := "all"
	if req.PlanID != nil {
		cohort.PlanID = *req.PlanID
		scope = strconv.FormatUint(uint64(*req.PlanID), 10)
	}

	opts := settleOptions{
		cooperativeID: req.CooperativeID,
		actorID:       actorID,
		method:        req.PaymentMethod,
		reference:     sanitizeOptional(req.PaymentReference),
		notes:         sanitizeOptional(req.Notes),
		lockName:      fmt.Sprintf("bulk:%d:month:%04d-%02d:%s", req.CooperativeID, req.Year, req.Month, scope),
		describe:      fmt.Sprintf("%s %d", time.Month(req.Month), req.Year),
	}

	return s.run(ctx, opts, func(ctx context.Context, result *BulkResult) ([]models.PaymentSchedule, error) {
		return s.scheduleRepo.FindSettleableByMonth(ctx, cohort)
	})
}

// BulkSettleByDate settles one plan's rows due on the given day
func (s *BulkSettlementService) BulkSettleByDate(ctx context.Context, req BulkDateRequest, actorID uint) (*BulkResult, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}
	if _, err := s.perms.Require(ctx, req.CooperativeID, actorID, PermApprovePayments); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && plan.CooperativeID != req.CooperativeID) {
		return nil, notFoundError("plan", req.PlanID)
	}
	if err != nil {
		return nil, err
	}

	day := truncateDay(req.Date)
	includeMissing := req.IncludeMissingSchedules == nil || *req.IncludeMissingSchedules

	opts := settleOptions{
		cooperativeID: req.CooperativeID,
		actorID:       actorID,
		method:        req.PaymentMethod,
		reference:     sanitizeOptional(req.PaymentReference),
		notes:         sanitizeOptional(req.Notes),
		lockName:      fmt.Sprintf("bulk:%d:date:%d:%s", req.CooperativeID, plan.ID, day.Format("2006-01-02")),
		describe:      fmt.Sprintf("%s on %s", plan.Name, day.Format("2006-01-02")),
	}

	return s.run(ctx, opts, func(ctx context.Context, result *BulkResult) ([]models.PaymentSchedule, error) {
		if includeMissing {
			created, err := s.materializeMissing(ctx, plan, day, req.ExcludeMemberIDs)
			if err != nil {
				return nil, err
			}
			result.CreatedSchedulesCount = created
		}
		return s.scheduleRepo.FindSettleableByDate(ctx, repository.DateCohort{
			CooperativeID:    req.CooperativeID,
			PlanID:           plan.ID,
			Date:             day,
			ExcludeMemberIDs: req.ExcludeMemberIDs,
		})
	})
}

// run holds the cohort lock, loads the cohort and settles each row in its
// own transaction. A failing row is reported and skipped.
func (s *BulkSettlementService) run(ctx context.Context, opts settleOptions, load func(context.Context, *BulkResult) ([]models.PaymentSchedule, error)) (*BulkResult, error) {
	lease, err := s.locker.Acquire(ctx, opts.lockName, s.lockTTL)
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		return nil, ErrBulkInProgress
	case err != nil:
		// the status guard on each row still prevents double settlement
		logger.Warn("bulk lock unavailable, continuing without it", "lock", opts.lockName, logger.Err(err))
	default:
		defer func() {
			if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("failed to release bulk lock", "lock", opts.lockName, logger.Err(err))
			}
		}()
	}

	runID := uuid.NewString()
	result := &BulkResult{BulkRunID: runID}

	rows, err := load(ctx, result)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		logger.Info("bulk settlement found nothing to settle", "bulk_run_id", runID, "cohort", opts.describe)
		return result, nil
	}

	method := opts.method
	if method == "" {
		method = models.PaymentMethodBulkApproval
	}

	var settled []Event
	for i := range rows {
		row := &rows[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}

		settlement, err := s.settlements.SettleSchedule(ctx, repository.ScheduleSettlementInput{
			ScheduleID:       row.ID,
			ActorID:          opts.actorID,
			PaymentMethod:    method,
			PaymentReference: opts.reference,
			Notes:            opts.notes,
			BulkRunID:        &runID,
			At:               s.now(),
		})
		if err != nil {
			result.SkippedCount++
			if errors.Is(err, repository.ErrScheduleNotSettleable) {
				logger.Debug("schedule settled elsewhere, skipping", "bulk_run_id", runID, "schedule_id", row.ID)
				continue
			}
			result.Failures = append(result.Failures, BulkFailure{
				ScheduleID: row.ID,
				MemberID:   row.Subscription.MemberID,
				Error:      err.Error(),
			})
			logger.Error("bulk settlement failed for schedule",
				"bulk_run_id", runID,
				"schedule_id", row.ID,
				"member_id", row.Subscription.MemberID,
				logger.Err(err),
			)
			reportBulkFailure(ctx, runID, row, err)
			continue
		}

		result.ApprovedCount++
		result.TotalAmount += settlement.Payment.Amount
		settled = append(settled, Event{
			Type:          EventScheduleSettled,
			ActorID:       opts.actorID,
			CooperativeID: opts.cooperativeID,
			MemberID:      settlement.Payment.MemberID,
			SubjectID:     row.ID,
			Amount:        settlement.Payment.Amount,
			Description:   fmt.Sprintf("Contribution of %s for %s recorded", formatMoney(settlement.Payment.Amount), row.PeriodLabel),
			Metadata: map[string]interface{}{
				"bulk_run_id": runID,
				"payment_id":  settlement.Payment.ID,
				"period":      row.PeriodLabel,
			},
		})
	}

	logger.Info("bulk settlement completed",
		"bulk_run_id", runID,
		"cohort", opts.describe,
		"approved", result.ApprovedCount,
		"created_schedules", result.CreatedSchedulesCount,
		"skipped", result.SkippedCount,
		"total_amount", result.TotalAmount,
	)

	settled = append(settled, Event{
		Type:          EventBulkSettled,
		ActorID:       opts.actorID,
		CooperativeID: opts.cooperativeID,
		Amount:        result.TotalAmount,
		Description:   fmt.Sprintf("Bulk settled %d contributions for %s", result.ApprovedCount, opts.describe),
		Metadata: map[string]interface{}{
			"bulk_run_id":       runID,
			"approved":          result.ApprovedCount,
			"created_schedules": result.CreatedSchedulesCount,
			"skipped":           result.SkippedCount,
		},
	})
	s.events.Publish(ctx, settled...)

	return result, nil
}

// materializeMissing creates a row on day for every active subscription on
// plan that has none, numbered after the subscription's highest period
func (s *BulkSettlementService) materializeMissing(ctx context.Context, plan *models.ContributionPlan, day time.Time, exclude []uint) (int64, error) {
	subs, err := s.subRepo.FindActiveWithoutScheduleOn(ctx, plan.ID, day, exclude)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		return 0, nil
	}

	rows := make([]models.PaymentSchedule, 0, len(subs))
	for _, sub := range subs {
		amount := sub.Amount
		if amount <= 0 && plan.FixedAmount != nil {
			amount = *plan.FixedAmount
		}
		if amount <= 0 {
			logger.Warn("no amount for missing schedule, skipping", "subscription_id", sub.ID)
			continue
		}

		maxPeriod, err := s.scheduleRepo.FindMaxPeriod(ctx, sub.ID)
		if err != nil {
			return 0, err
		}

		rows = append(rows, models.PaymentSchedule{
			SubscriptionID: sub.ID,
			DueDate:        day,
			Amount:         amount,
			PeriodNumber:   maxPeriod + 1,
			PeriodLabel:    PeriodLabel(plan.EffectiveFrequency(), day),
			Status:         models.ScheduleStatusPending,
		})
	}

	created, err := s.scheduleRepo.CreateBatch(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to create missing schedules: %w", err)
	}
	return created, nil
}

func reportBulkFailure(ctx context.Context, runID string, row *models.PaymentSchedule, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("bulk_run_id", runID)
		scope.SetTag("schedule_id", strconv.FormatUint(uint64(row.ID), 10))
		scope.SetTag("member_id", strconv.FormatUint(uint64(row.Subscription.MemberID), 10))
		hub.CaptureException(err)
	})
}
