package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

func TestSubscriptionService_Subscribe_GeneratesTwelveMonthlyRows(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	plan := h.fixedPlan(t, 5000, testutil.Date(2025, 1, 10))

	res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, res.Subscription.Amount, "fixed plans commit to the plan amount")
	assert.Equal(t, int64(12), res.SchedulesCreated)

	rows, err := h.repos.Schedule.FindBySubscription(h.ctx, res.Subscription.ID)
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.True(t, rows[0].DueDate.Equal(testutil.Date(2025, 1, 10)))
	assert.True(t, rows[11].DueDate.Equal(testutil.Date(2025, 12, 10)))
	for i, r := range rows {
		assert.Equal(t, i+1, r.PeriodNumber)
		assert.Equal(t, 5000.0, r.Amount)
		assert.Equal(t, models.ScheduleStatusPending, r.Status)
	}

	created := h.recorder.ofType(EventSubscriptionCreated)
	require.Len(t, created, 1)
	assert.Equal(t, uint(2), created[0].MemberID)

	// the member is told about it
	notes, total, err := h.svc.Notification.FindByUser(h.ctx, 2, repository.NewListQuery())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, models.NotificationTypeSubscriptionCreated, *notes[0].NotificationType)
}

func TestSubscriptionService_Subscribe_Rules(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	notional := h.notionalPlan(t, 100, 1000, testutil.Date(2025, 1, 1))

	_, err := h.svc.Subscription.Subscribe(h.ctx, notional.ID, 50, 2)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = h.svc.Subscription.Subscribe(h.ctx, notional.ID, 1500, 2)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	_, err = h.svc.Subscription.Subscribe(h.ctx, notional.ID, 0, 2)
	assert.ErrorIs(t, err, ErrValidation)

	res, err := h.svc.Subscription.Subscribe(h.ctx, notional.ID, 250, 2)
	require.NoError(t, err)
	assert.Equal(t, 250.0, res.Subscription.Amount)

	_, err = h.svc.Subscription.Subscribe(h.ctx, notional.ID, 250, 2)
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	_, err = h.svc.Subscription.Subscribe(h.ctx, notional.ID, 250, 404)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = h.svc.Subscription.Subscribe(h.ctx, 9999, 250, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	inactive := false
	_, err = h.svc.Plan.UpdatePlan(h.ctx, notional.ID, PlanUpdate{IsActive: &inactive}, h.Admin.MemberID)
	require.NoError(t, err)
	h.AddMember(t, 3, models.RoleMember)
	_, err = h.svc.Subscription.Subscribe(h.ctx, notional.ID, 250, 3)
	assert.ErrorIs(t, err, ErrPlanInactive)
}

func TestSubscriptionService_StatusTransitions(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 1))
	res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, 2)
	require.NoError(t, err)
	subID := res.Subscription.ID

	_, err = h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusPaused}, 2)
	assert.ErrorIs(t, err, ErrAdminOnlyTransition)

	paused, err := h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusPaused}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusPaused, paused.Status)
	assert.NotNil(t, paused.PausedAt)

	_, err = h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusPaused}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusActive}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Nil(t, resumed.PausedAt)

	h.AddMember(t, 3, models.RoleMember)
	_, err = h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusCancelled}, 3)
	assert.ErrorIs(t, err, ErrNotOwner)

	cancelled, err := h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusCancelled}, 2)
	require.NoError(t, err)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: models.SubscriptionStatusActive}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, subID, SubscriptionStatusUpdate{Status: "archived"}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrValidation)

	assert.Len(t, h.recorder.ofType(EventSubscriptionStatusChanged), 3)
}

func TestSubscriptionService_UpdateAmount(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	fixed := h.fixedPlan(t, 100, testutil.Date(2025, 1, 1))
	notional := h.notionalPlan(t, 100, 1000, testutil.Date(2025, 1, 1))

	fixedSub, err := h.svc.Subscription.Subscribe(h.ctx, fixed.ID, 0, 2)
	require.NoError(t, err)
	_, err = h.svc.Subscription.UpdateSubscriptionAmount(h.ctx, fixedSub.Subscription.ID, SubscriptionAmountUpdate{Amount: 300}, 2)
	assert.ErrorIs(t, err, ErrFixedAmount)

	res, err := h.svc.Subscription.Subscribe(h.ctx, notional.ID, 200, 2)
	require.NoError(t, err)

	_, err = h.svc.Subscription.UpdateSubscriptionAmount(h.ctx, res.Subscription.ID, SubscriptionAmountUpdate{Amount: 5000}, 2)
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	updated, err := h.svc.Subscription.UpdateSubscriptionAmount(h.ctx, res.Subscription.ID, SubscriptionAmountUpdate{Amount: 400}, 2)
	require.NoError(t, err)
	assert.Equal(t, 400.0, updated.Amount)

	// existing rows keep the amount they were generated with
	rows, err := h.repos.Schedule.FindBySubscription(h.ctx, res.Subscription.ID)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, 200.0, rows[0].Amount)
}

func TestSubscriptionService_ListSubscriptions_ScopesMembers(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	h.AddMember(t, 3, models.RoleMember)
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 1))
	for _, m := range []uint{2, 3} {
		_, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, m)
		require.NoError(t, err)
	}

	query := func() *repository.SubscriptionQuery {
		return &repository.SubscriptionQuery{ListQuery: repository.NewListQuery(), CooperativeID: h.Cooperative.ID}
	}

	own, total, err := h.svc.Subscription.ListSubscriptions(h.ctx, query(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, uint(2), own[0].MemberID)

	_, total, err = h.svc.Subscription.ListSubscriptions(h.ctx, query(), h.Admin.MemberID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	other := query()
	other.MemberID = 3
	_, _, err = h.svc.Subscription.ListSubscriptions(h.ctx, other, 2)
	assert.ErrorIs(t, err, ErrPermission)
}
