package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// ScheduleScope narrows due/overdue listings. Either CooperativeID or
// SubscriptionID must be set.
type ScheduleScope struct {
	CooperativeID  uint
	SubscriptionID uint
	MemberID       uint
	PlanID         uint
}

// ExtensionSummary reports a run over all continuous subscriptions
type ExtensionSummary struct {
	Subscriptions int   `json:"subscriptions"`
	Extended      int   `json:"extended"`
	Created       int64 `json:"created"`
	Failed        int   `json:"failed"`
}

type ScheduleService struct {
	repo      repository.ScheduleRepository
	subRepo   repository.SubscriptionRepository
	perms     *PermissionService
	events    EventPublisher
	lookAhead int
	now       func() time.Time
}

func NewScheduleService(repo repository.ScheduleRepository, subRepo repository.SubscriptionRepository, perms *PermissionService, events EventPublisher, lookAheadMonths int) *ScheduleService {
	if events == nil {
		events = discardPublisher{}
	}
	return &ScheduleService{
		repo:      repo,
		subRepo:   subRepo,
		perms:     perms,
		events:    events,
		lookAhead: lookAheadMonths,
		now:       time.Now,
	}
}

// Generate lays out and stores a fresh schedule for sub. Rows that already
// exist for the same due date are left untouched.
func (s *ScheduleService) Generate(ctx context.Context, sub *models.ContributionSubscription, plan *models.ContributionPlan) (int64, error) {
	rows := GenerateSchedule(NewScheduleSpec(sub, plan, s.lookAhead), s.now())
	created, err := s.repo.CreateBatch(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to store schedule for subscription %d: %w", sub.ID, err)
	}
	return created, nil
}

// ExtendSchedules tops up a continuous subscription's schedule when it is
// about to run out. Period plans and inactive subscriptions are left alone.
func (s *ScheduleService) ExtendSchedules(ctx context.Context, subscriptionID uint) (int64, error) {
	sub, err := s.subRepo.FindByID(ctx, subscriptionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, notFoundError("subscription", subscriptionID)
	}
	if err != nil {
		return 0, err
	}
	return s.extend(ctx, sub)
}

func (s *ScheduleService) extend(ctx context.Context, sub *models.ContributionSubscription) (int64, error) {
	if !sub.Plan.IsContinuous() || !sub.IsActive() {
		return 0, nil
	}

	first, err := s.repo.FindFirstBySubscription(ctx, sub.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	latest, err := s.repo.FindLatestBySubscription(ctx, sub.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	maxPeriod, err := s.repo.FindMaxPeriod(ctx, sub.ID)
	if err != nil {
		return 0, err
	}

	rows := ExtendSchedule(NewScheduleSpec(sub, &sub.Plan, s.lookAhead), first, latest, maxPeriod, s.now())
	if len(rows) == 0 {
		return 0, nil
	}
	created, err := s.repo.CreateBatch(ctx, rows)
	if err != nil {
		return 0, fmt.Errorf("failed to extend schedule for subscription %d: %w", sub.ID, err)
	}
	if created > 0 {
		logger.Info("schedule extended", "subscription_id", sub.ID, "created", created)
		s.events.Publish(ctx, Event{
			Type:          EventSchedulesExtended,
			CooperativeID: sub.CooperativeID,
			MemberID:      sub.MemberID,
			SubjectID:     sub.ID,
			Description:   fmt.Sprintf("Extended schedule by %d periods", created),
			Metadata:      map[string]interface{}{"created": created},
		})
	}
	return created, nil
}

// ExtendAllContinuous runs extension for every active continuous
// subscription. One subscription failing does not stop the run.
func (s *ScheduleService) ExtendAllContinuous(ctx context.Context) (*ExtensionSummary, error) {
	subs, err := s.subRepo.FindActiveContinuous(ctx)
	if err != nil {
		return nil, err
	}

	summary := &ExtensionSummary{Subscriptions: len(subs)}
	for i := range subs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		created, err := s.extend(ctx, &subs[i])
		if err != nil {
			summary.Failed++
			logger.Error("schedule extension failed", "subscription_id", subs[i].ID, logger.Err(err))
			continue
		}
		if created > 0 {
			summary.Extended++
			summary.Created += created
		}
	}

	logger.Info("continuous schedules extended",
		"subscriptions", summary.Subscriptions,
		"extended", summary.Extended,
		"created", summary.Created,
		"failed", summary.Failed,
	)
	return summary, nil
}

// ListDue returns unsettled rows due today or earlier with derived fields
func (s *ScheduleService) ListDue(ctx context.Context, scope ScheduleScope, actorID uint) ([]models.ScheduleResponse, error) {
	query, err := s.authorizeScope(ctx, scope, actorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows, err := s.repo.FindDue(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return toScheduleResponses(rows, now), nil
}

// ListOverdue returns unsettled rows due before today with derived fields
func (s *ScheduleService) ListOverdue(ctx context.Context, scope ScheduleScope, actorID uint) ([]models.ScheduleResponse, error) {
	query, err := s.authorizeScope(ctx, scope, actorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rows, err := s.repo.FindOverdue(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return toScheduleResponses(rows, now), nil
}

// ListSchedules pages through all rows in scope
func (s *ScheduleService) ListSchedules(ctx context.Context, scope ScheduleScope, list *repository.ListQuery, actorID uint) ([]models.ScheduleResponse, int64, error) {
	query, err := s.authorizeScope(ctx, scope, actorID)
	if err != nil {
		return nil, 0, err
	}
	query.ListQuery = list
	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return toScheduleResponses(rows, s.now()), total, nil
}

// authorizeScope resolves the cooperative for scope and restricts members
// without view_all to their own rows
func (s *ScheduleService) authorizeScope(ctx context.Context, scope ScheduleScope, actorID uint) (*repository.ScheduleQuery, error) {
	query := &repository.ScheduleQuery{
		ListQuery:      repository.NewListQuery(),
		CooperativeID:  scope.CooperativeID,
		SubscriptionID: scope.SubscriptionID,
		MemberID:       scope.MemberID,
		PlanID:         scope.PlanID,
	}

	var owner uint
	if scope.SubscriptionID > 0 {
		sub, err := s.subRepo.FindByID(ctx, scope.SubscriptionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("subscription", scope.SubscriptionID)
		}
		if err != nil {
			return nil, err
		}
		query.CooperativeID = sub.CooperativeID
		owner = sub.MemberID
	}
	if query.CooperativeID == 0 {
		return nil, validationError("cooperative_id or subscription_id is required")
	}

	member, err := s.perms.Membership(ctx, query.CooperativeID, actorID)
	if err != nil {
		return nil, err
	}
	if s.perms.Allows(member, PermViewAll) {
		return query, nil
	}

	if owner != 0 && owner != actorID {
		return nil, ErrNotOwner
	}
	if query.MemberID != 0 && query.MemberID != actorID {
		return nil, permissionError(PermViewAll)
	}
	query.MemberID = actorID
	return query, nil
}

func toScheduleResponses(rows []models.PaymentSchedule, now time.Time) []models.ScheduleResponse {
	out := make([]models.ScheduleResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToResponse(now))
	}
	return out
}
