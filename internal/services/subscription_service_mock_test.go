package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
)

type stubPlanRepo struct {
	repository.PlanRepository
	plan *models.ContributionPlan
}

func (r *stubPlanRepo) FindByID(ctx context.Context, id uint) (*models.ContributionPlan, error) {
	if r.plan == nil || r.plan.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.plan, nil
}

type stubCoopRepo struct {
	repository.CooperativeRepository
	member *models.CooperativeMember
}

func (r *stubCoopRepo) FindMember(ctx context.Context, cooperativeID, memberID uint) (*models.CooperativeMember, error) {
	if r.member == nil || r.member.CooperativeID != cooperativeID || r.member.MemberID != memberID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.member, nil
}

type stubSubscriptionRepo struct {
	repository.SubscriptionRepository
	createErr error
	created   int
}

func (r *stubSubscriptionRepo) FindByPlanAndMember(ctx context.Context, planID, memberID uint) (*models.ContributionSubscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSubscriptionRepo) Create(ctx context.Context, sub *models.ContributionSubscription) error {
	r.created++
	return r.createErr
}

func newStubSubscriptionService(t *testing.T, plan *models.ContributionPlan, subs *stubSubscriptionRepo) *SubscriptionService {
	t.Helper()
	perms, err := NewPermissionService(&stubCoopRepo{member: &models.CooperativeMember{
		CooperativeID: 1,
		MemberID:      7,
		Role:          models.RoleMember,
		Status:        models.MemberStatusActive,
	}})
	require.NoError(t, err)
	return NewSubscriptionService(subs, &stubPlanRepo{plan: plan}, nil, perms, nil)
}

func stubFixedPlan(active bool) *models.ContributionPlan {
	amount := 100.0
	return &models.ContributionPlan{
		ID:               3,
		CooperativeID:    1,
		Name:             "Savings",
		Category:         models.PlanCategoryCompulsory,
		ContributionType: models.ContributionTypeFixed,
		FixedAmount:      &amount,
		DurationType:     models.DurationTypeContinuous,
		IsActive:         active,
	}
}

func TestSubscriptionService_Subscribe_RacingInsertIsConflict(t *testing.T) {
	subs := &stubSubscriptionRepo{createErr: gorm.ErrDuplicatedKey}
	svc := newStubSubscriptionService(t, stubFixedPlan(true), subs)

	_, err := svc.Subscribe(context.Background(), 3, 0, 7)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 1, subs.created)
}

func TestSubscriptionService_Subscribe_StopsBeforeInsert(t *testing.T) {
	tests := []struct {
		name    string
		plan    *models.ContributionPlan
		actorID uint
		kind    ErrorKind
	}{
		{name: "Missing Plan", plan: nil, actorID: 7, kind: KindNotFound},
		{name: "Inactive Plan", plan: stubFixedPlan(false), actorID: 7, kind: KindState},
		{name: "Outsider", plan: stubFixedPlan(true), actorID: 99, kind: KindPermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &stubSubscriptionRepo{}
			svc := newStubSubscriptionService(t, tt.plan, subs)

			_, err := svc.Subscribe(context.Background(), 3, 0, tt.actorID)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Zero(t, subs.created)
		})
	}
}

func TestSubscriptionService_Subscribe_StorageFailurePassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	subs := &stubSubscriptionRepo{createErr: boom}
	svc := newStubSubscriptionService(t, stubFixedPlan(true), subs)

	_, err := svc.Subscribe(context.Background(), 3, 0, 7)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ErrorKind(""), KindOf(err))
}
