package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/statemachine"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// SubscriptionStatusUpdate requests a status transition
type SubscriptionStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=active paused cancelled"`
}

// SubscriptionAmountUpdate requests a new committed amount on a notional plan
type SubscriptionAmountUpdate struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// SubscribeResult is a new subscription and how many schedule rows it got
type SubscribeResult struct {
	Subscription     *models.ContributionSubscription `json:"subscription"`
	SchedulesCreated int64                            `json:"schedules_created"`
}

type SubscriptionService struct {
	repo      repository.SubscriptionRepository
	planRepo  repository.PlanRepository
	schedules *ScheduleService
	perms     *PermissionService
	events    EventPublisher
	now       func() time.Time
}

func NewSubscriptionService(repo repository.SubscriptionRepository, planRepo repository.PlanRepository, schedules *ScheduleService, perms *PermissionService, events EventPublisher) *SubscriptionService {
	if events == nil {
		events = discardPublisher{}
	}
	return &SubscriptionService{
		repo:      repo,
		planRepo:  planRepo,
		schedules: schedules,
		perms:     perms,
		events:    events,
		now:       time.Now,
	}
}

// Subscribe binds the actor to a plan and lays out their schedule. Fixed
// plans commit to the plan amount whatever amount is passed.
func (s *SubscriptionService) Subscribe(ctx context.Context, planID uint, amount float64, actorID uint) (*SubscribeResult, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("plan", planID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.perms.Membership(ctx, plan.CooperativeID, actorID); err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrPlanInactive
	}

	existing, err := s.repo.FindByPlanAndMember(ctx, planID, actorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadySubscribed
	}

	if !plan.AcceptsAmount(amount) {
		return nil, ErrAmountOutOfRange
	}

	sub := &models.ContributionSubscription{
		PlanID:        plan.ID,
		MemberID:      actorID,
		CooperativeID: plan.CooperativeID,
		Amount:        plan.CommittedAmount(amount),
		Status:        models.SubscriptionStatusActive,
		SubscribedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	sub.Plan = *plan

	created, err := s.schedules.Generate(ctx, sub, plan)
	if err != nil {
		return nil, err
	}

	logger.Info("member subscribed",
		"subscription_id", sub.ID,
		"plan_id", plan.ID,
		"member_id", actorID,
		"amount", sub.Amount,
		"schedules", created,
	)
	s.events.Publish(ctx, Event{
		Type:          EventSubscriptionCreated,
		ActorID:       actorID,
		CooperativeID: sub.CooperativeID,
		MemberID:      sub.MemberID,
		SubjectID:     sub.ID,
		Amount:        sub.Amount,
		Description:   fmt.Sprintf("Subscribed to %s at %s", plan.Name, formatMoney(sub.Amount)),
		Metadata:      map[string]interface{}{"plan_id": plan.ID, "schedules_created": created},
	})

	return &SubscribeResult{Subscription: sub, SchedulesCreated: created}, nil
}

// UpdateSubscriptionStatus moves a subscription through its lifecycle.
// Only members who manage subscriptions may pause or resume; the owner may
// also cancel.
func (s *SubscriptionService) UpdateSubscriptionStatus(ctx context.Context, subscriptionID uint, update SubscriptionStatusUpdate, actorID uint) (*models.ContributionSubscription, error) {
	if err := validateStruct(&update); err != nil {
		return nil, err
	}

	sub, manager, err := s.loadForChange(ctx, subscriptionID, actorID)
	if err != nil {
		return nil, err
	}

	switch update.Status {
	case models.SubscriptionStatusPaused, models.SubscriptionStatusActive:
		if !manager {
			return nil, ErrAdminOnlyTransition
		}
	case models.SubscriptionStatusCancelled:
		if !manager && sub.MemberID != actorID {
			return nil, ErrNotOwner
		}
	}

	previous := sub.Status
	machine := statemachine.NewSubscriptionFSM(sub)
	if err := machine.Transition(ctx, update.Status); err != nil {
		logger.Debug("subscription transition refused", "subscription_id", sub.ID, logger.Err(err))
		return nil, ErrInvalidTransition
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	logger.Info("subscription status changed",
		"subscription_id", sub.ID,
		"from", previous,
		"to", sub.Status,
		"actor_id", actorID,
	)
	s.events.Publish(ctx, Event{
		Type:          EventSubscriptionStatusChanged,
		ActorID:       actorID,
		CooperativeID: sub.CooperativeID,
		MemberID:      sub.MemberID,
		SubjectID:     sub.ID,
		Description:   fmt.Sprintf("Subscription %s", sub.Status),
		Metadata:      map[string]interface{}{"from": previous, "to": sub.Status},
	})

	if sub.Status == models.SubscriptionStatusActive {
		if _, err := s.schedules.extend(ctx, sub); err != nil {
			logger.Warn("schedule extension after resume failed", "subscription_id", sub.ID, logger.Err(err))
		}
	}

	return sub, nil
}

// UpdateSubscriptionAmount changes the committed amount on a notional plan.
// Rows already generated keep the amount they were created with.
func (s *SubscriptionService) UpdateSubscriptionAmount(ctx context.Context, subscriptionID uint, update SubscriptionAmountUpdate, actorID uint) (*models.ContributionSubscription, error) {
	if err := validateStruct(&update); err != nil {
		return nil, err
	}

	sub, manager, err := s.loadForChange(ctx, subscriptionID, actorID)
	if err != nil {
		return nil, err
	}
	if !manager && sub.MemberID != actorID {
		return nil, ErrNotOwner
	}
	if sub.Plan.IsFixed() {
		return nil, ErrFixedAmount
	}
	if sub.Status == models.SubscriptionStatusCancelled {
		return nil, ErrSubscriptionInactive
	}
	if !sub.Plan.AcceptsAmount(update.Amount) {
		return nil, ErrAmountOutOfRange
	}

	previous := sub.Amount
	sub.Amount = update.Amount
	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{
		Type:          EventSubscriptionAmountChanged,
		ActorID:       actorID,
		CooperativeID: sub.CooperativeID,
		MemberID:      sub.MemberID,
		SubjectID:     sub.ID,
		Amount:        sub.Amount,
		Description:   fmt.Sprintf("Committed amount changed from %s to %s", formatMoney(previous), formatMoney(sub.Amount)),
		Metadata:      map[string]interface{}{"from": previous, "to": sub.Amount},
	})
	return sub, nil
}

// GetSubscription returns a subscription to its owner or to members who view everything
func (s *SubscriptionService) GetSubscription(ctx context.Context, subscriptionID, actorID uint) (*models.ContributionSubscription, error) {
	sub, err := s.find(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	member, err := s.perms.Membership(ctx, sub.CooperativeID, actorID)
	if err != nil {
		return nil, err
	}
	if sub.MemberID != actorID && !s.perms.Allows(member, PermViewAll) {
		return nil, ErrNotOwner
	}
	return sub, nil
}

// ListSubscriptions lists a cooperative's subscriptions. Members without
// view_all only see their own.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, query *repository.SubscriptionQuery, actorID uint) ([]models.ContributionSubscription, int64, error) {
	if query.CooperativeID == 0 {
		return nil, 0, validationError("cooperative_id is required")
	}
	member, err := s.perms.Membership(ctx, query.CooperativeID, actorID)
	if err != nil {
		return nil, 0, err
	}
	if !s.perms.Allows(member, PermViewAll) {
		if query.MemberID != 0 && query.MemberID != actorID {
			return nil, 0, permissionError(PermViewAll)
		}
		query.MemberID = actorID
	}
	return s.repo.List(ctx, query)
}

// loadForChange loads the subscription and reports whether the actor
// manages subscriptions in its cooperative
func (s *SubscriptionService) loadForChange(ctx context.Context, subscriptionID, actorID uint) (*models.ContributionSubscription, bool, error) {
	sub, err := s.find(ctx, subscriptionID)
	if err != nil {
		return nil, false, err
	}
	member, err := s.perms.Membership(ctx, sub.CooperativeID, actorID)
	if err != nil {
		return nil, false, err
	}
	return sub, s.perms.Allows(member, PermManageSubscriptions), nil
}

func (s *SubscriptionService) find(ctx context.Context, subscriptionID uint) (*models.ContributionSubscription, error) {
	sub, err := s.repo.FindByID(ctx, subscriptionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("subscription", subscriptionID)
	}
	return sub, err
}
