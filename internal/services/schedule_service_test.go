package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

func TestScheduleService_ExtendSchedules(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 10))
	res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, 2)
	require.NoError(t, err)
	subID := res.Subscription.ID

	created, err := h.svc.Schedule.ExtendSchedules(h.ctx, subID)
	require.NoError(t, err)
	assert.Zero(t, created, "a fresh schedule runs far enough ahead")

	h.setNow(testutil.Date(2025, 10, 1))
	created, err = h.svc.Schedule.ExtendSchedules(h.ctx, subID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created)

	rows, err := h.repos.Schedule.FindBySubscription(h.ctx, subID)
	require.NoError(t, err)
	require.Len(t, rows, 21)
	assert.Equal(t, 13, rows[12].PeriodNumber)
	assert.True(t, rows[12].DueDate.Equal(testutil.Date(2026, 1, 10)))

	created, err = h.svc.Schedule.ExtendSchedules(h.ctx, subID)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, h.recorder.ofType(EventSchedulesExtended), 1)

	_, err = h.svc.Schedule.ExtendSchedules(h.ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleService_ExtendAllContinuous(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 10))
	var paused uint
	for _, m := range []uint{2, 3, 4} {
		h.AddMember(t, m, models.RoleMember)
		res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, m)
		require.NoError(t, err)
		paused = res.Subscription.ID
	}
	_, err := h.svc.Subscription.UpdateSubscriptionStatus(h.ctx, paused, SubscriptionStatusUpdate{Status: models.SubscriptionStatusPaused}, h.Admin.MemberID)
	require.NoError(t, err)

	h.setNow(testutil.Date(2025, 10, 1))
	summary, err := h.svc.Schedule.ExtendAllContinuous(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Subscriptions)
	assert.Equal(t, 2, summary.Extended)
	assert.Equal(t, int64(18), summary.Created)
	assert.Zero(t, summary.Failed)

	summary, err = h.svc.Schedule.ExtendAllContinuous(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
}

func TestScheduleService_DueAndOverdue(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	h.AddMember(t, 3, models.RoleMember)
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 10))
	res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, 2)
	require.NoError(t, err)
	_, err = h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, 3)
	require.NoError(t, err)
	own := ScheduleScope{SubscriptionID: res.Subscription.ID}

	h.setNow(testutil.Date(2025, 3, 10))
	due, err := h.svc.Schedule.ListDue(h.ctx, own, 2)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	overdue, err := h.svc.Schedule.ListOverdue(h.ctx, own, 2)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, 59, overdue[0].DaysOverdue)
	assert.True(t, overdue[0].IsOverdue)
	assert.Equal(t, 100.0, overdue[0].Outstanding)

	// members only see their own rows
	_, err = h.svc.Schedule.ListDue(h.ctx, own, 3)
	assert.ErrorIs(t, err, ErrNotOwner)
	coopWide, err := h.svc.Schedule.ListDue(h.ctx, ScheduleScope{CooperativeID: h.Cooperative.ID}, 3)
	require.NoError(t, err)
	assert.Len(t, coopWide, 3)
	for _, r := range coopWide {
		assert.Equal(t, uint(3), r.MemberID)
	}
	_, err = h.svc.Schedule.ListDue(h.ctx, ScheduleScope{CooperativeID: h.Cooperative.ID, MemberID: 2}, 3)
	assert.ErrorIs(t, err, ErrPermission)

	all, err := h.svc.Schedule.ListDue(h.ctx, ScheduleScope{CooperativeID: h.Cooperative.ID}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	_, err = h.svc.Schedule.ListDue(h.ctx, ScheduleScope{}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrValidation)

	page, total, err := h.svc.Schedule.ListSchedules(h.ctx, own, repository.NewListQuery(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, page, 12)
}

func TestScheduleService_ExtendAfterBulkMaterializedRow(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	h.AddMember(t, 2, models.RoleMember)
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 10))
	res, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, 2)
	require.NoError(t, err)
	subID := res.Subscription.ID

	h.setNow(testutil.Date(2025, 3, 15))
	bulk, err := h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        plan.ID,
		Date:          testutil.Date(2025, 3, 15),
	}, h.Admin.MemberID)
	require.NoError(t, err)
	require.Equal(t, int64(1), bulk.CreatedSchedulesCount)

	h.setNow(testutil.Date(2025, 10, 1))
	created, err := h.svc.Schedule.ExtendSchedules(h.ctx, subID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), created)

	rows, err := h.repos.Schedule.FindBySubscription(h.ctx, subID)
	require.NoError(t, err)
	require.Len(t, rows, 22)

	seen := make(map[int]string, len(rows))
	for _, row := range rows {
		day := row.DueDate.Format("2006-01-02")
		if other, dup := seen[row.PeriodNumber]; dup {
			t.Fatalf("period %d used by %s and %s", row.PeriodNumber, other, day)
		}
		seen[row.PeriodNumber] = day
	}
	assert.Equal(t, "2025-03-15", seen[13])
	assert.Equal(t, "2026-01-10", seen[14])
	assert.Equal(t, "2026-09-10", seen[22])
}
