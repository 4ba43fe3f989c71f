package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// PlanDefinition is the input for creating a plan. Amount and duration
// policies are validated together and cannot be changed afterwards.
type PlanDefinition struct {
	Name             string     `json:"name" validate:"required,max=150"`
	Description      *string    `json:"description"`
	Category         string     `json:"category" validate:"omitempty,oneof=compulsory optional"`
	ContributionType string     `json:"contribution_type" validate:"required,oneof=fixed notional"`
	FixedAmount      *float64   `json:"fixed_amount" validate:"omitempty,gt=0"`
	MinAmount        *float64   `json:"min_amount" validate:"omitempty,gt=0"`
	MaxAmount        *float64   `json:"max_amount" validate:"omitempty,gt=0"`
	DurationType     string     `json:"duration_type" validate:"required,oneof=continuous period"`
	Frequency        *string    `json:"frequency" validate:"omitempty,oneof=daily weekly biweekly monthly quarterly yearly"`
	StartDate        *time.Time `json:"start_date"`
	EndDate          *time.Time `json:"end_date"`
}

// PlanUpdate carries the only fields that may change after creation
type PlanUpdate struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=150"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type PlanService struct {
	repo     repository.PlanRepository
	coopRepo repository.CooperativeRepository
	perms    *PermissionService
	events   EventPublisher
	now      func() time.Time
}

func NewPlanService(repo repository.PlanRepository, coopRepo repository.CooperativeRepository, perms *PermissionService, events EventPublisher) *PlanService {
	if events == nil {
		events = discardPublisher{}
	}
	return &PlanService{repo: repo, coopRepo: coopRepo, perms: perms, events: events, now: time.Now}
}

// checkStructure enforces the cross-field rules tags cannot express
func (d *PlanDefinition) checkStructure() error {
	switch d.ContributionType {
	case models.ContributionTypeFixed:
		if d.FixedAmount == nil {
			return validationError("fixed_amount is required for fixed plans")
		}
	case models.ContributionTypeNotional:
		if d.MinAmount != nil && d.MaxAmount != nil && *d.MinAmount > *d.MaxAmount {
			return validationError("min_amount cannot exceed max_amount")
		}
	}
	if d.DurationType == models.DurationTypePeriod {
		if d.EndDate == nil {
			return validationError("end_date is required for period plans")
		}
		if d.StartDate != nil && d.EndDate.Before(*d.StartDate) {
			return validationError("end_date cannot be before start_date")
		}
	}
	return nil
}

func (s *PlanService) CreatePlan(ctx context.Context, cooperativeID uint, def PlanDefinition, actorID uint) (*models.ContributionPlan, error) {
	if _, err := s.perms.Require(ctx, cooperativeID, actorID, PermManagePlans); err != nil {
		return nil, err
	}

	def.Name = sanitizeText(def.Name)
	def.Description = sanitizeOptional(def.Description)
	if err := validateStruct(&def); err != nil {
		return nil, err
	}
	if def.StartDate == nil {
		start := truncateDay(s.now())
		def.StartDate = &start
	}
	if err := def.checkStructure(); err != nil {
		return nil, err
	}

	if _, err := s.coopRepo.FindByID(ctx, cooperativeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("cooperative", cooperativeID)
		}
		return nil, err
	}

	plan := &models.ContributionPlan{
		CooperativeID:    cooperativeID,
		Name:             def.Name,
		Description:      def.Description,
		Category:         def.Category,
		ContributionType: def.ContributionType,
		DurationType:     def.DurationType,
		Frequency:        def.Frequency,
		StartDate:        truncateDay(*def.StartDate),
		IsActive:         true,
		CreatedBy:        actorID,
	}
	if plan.Category == "" {
		plan.Category = models.PlanCategoryOptional
	}
	if def.ContributionType == models.ContributionTypeFixed {
		plan.FixedAmount = def.FixedAmount
	} else {
		plan.MinAmount = def.MinAmount
		plan.MaxAmount = def.MaxAmount
	}
	if def.DurationType == models.DurationTypePeriod {
		end := truncateDay(*def.EndDate)
		plan.EndDate = &end
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}

	logger.Info("plan created", "plan_id", plan.ID, "cooperative_id", cooperativeID, "actor_id", actorID)
	s.events.Publish(ctx, Event{
		Type:          EventPlanCreated,
		ActorID:       actorID,
		CooperativeID: cooperativeID,
		SubjectID:     plan.ID,
		Description:   "Created plan " + plan.Name,
		Metadata: map[string]interface{}{
			"contribution_type": plan.ContributionType,
			"duration_type":     plan.DurationType,
			"frequency":         plan.EffectiveFrequency(),
		},
	})
	return plan, nil
}

func (s *PlanService) UpdatePlan(ctx context.Context, planID uint, update PlanUpdate, actorID uint) (*models.ContributionPlan, error) {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perms.Require(ctx, plan.CooperativeID, actorID, PermManagePlans); err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := sanitizeText(*update.Name)
		update.Name = &name
	}
	if err := validateStruct(&update); err != nil {
		return nil, err
	}

	changed := map[string]interface{}{}
	if update.Name != nil {
		plan.Name = *update.Name
		changed["name"] = plan.Name
	}
	if update.Description != nil {
		plan.Description = sanitizeOptional(update.Description)
		changed["description"] = plan.Description
	}
	if update.IsActive != nil {
		plan.IsActive = *update.IsActive
		changed["is_active"] = plan.IsActive
	}
	if len(changed) == 0 {
		return plan, nil
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, Event{
		Type:          EventPlanUpdated,
		ActorID:       actorID,
		CooperativeID: plan.CooperativeID,
		SubjectID:     plan.ID,
		Description:   "Updated plan " + plan.Name,
		Metadata:      changed,
	})
	return plan, nil
}

// GetPlan returns a plan to any active member of its cooperative
func (s *PlanService) GetPlan(ctx context.Context, planID, actorID uint) (*models.ContributionPlan, error) {
	plan, err := s.findPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.perms.Membership(ctx, plan.CooperativeID, actorID); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context, cooperativeID uint, query *repository.ListQuery, actorID uint) ([]models.ContributionPlan, int64, error) {
	if _, err := s.perms.Membership(ctx, cooperativeID, actorID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, cooperativeID, query)
}

func (s *PlanService) findPlan(ctx context.Context, planID uint) (*models.ContributionPlan, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("plan", planID)
	}
	return plan, err
}
