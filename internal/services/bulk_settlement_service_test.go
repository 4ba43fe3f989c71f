package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/lock"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, string, time.Duration) (lock.Lease, error) {
	return nil, lock.ErrNotAcquired
}

// bulkCohort sets up a 100/month plan from 2025-01-10. Members 2, 3 and 4
// subscribe through the service and have rows; members 5 and 6 have
// subscriptions with no rows.
func bulkCohort(t *testing.T, h *harness) *models.ContributionPlan {
	t.Helper()
	plan := h.fixedPlan(t, 100, testutil.Date(2025, 1, 10))
	for _, m := range []uint{2, 3, 4} {
		h.AddMember(t, m, models.RoleMember)
		_, err := h.svc.Subscription.Subscribe(h.ctx, plan.ID, 0, m)
		require.NoError(t, err)
	}
	for _, m := range []uint{5, 6} {
		h.AddMember(t, m, models.RoleMember)
		h.Subscribe(t, plan, m, 100, testutil.Date(2025, 1, 10))
	}
	return plan
}

func TestBulkSettleByDate_MaterializesMissingRows(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	plan := bulkCohort(t, h)
	h.setNow(testutil.Date(2025, 2, 12))

	result, err := h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        plan.ID,
		Date:          testutil.Date(2025, 2, 10),
	}, h.Admin.MemberID)
	require.NoError(t, err)

	assert.NotEmpty(t, result.BulkRunID)
	assert.Equal(t, 5, result.ApprovedCount)
	assert.Equal(t, int64(2), result.CreatedSchedulesCount)
	assert.Equal(t, 500.0, result.TotalAmount)
	assert.Zero(t, result.SkippedCount)
	assert.Empty(t, result.Failures)

	assert.Equal(t, 500.0, h.cooperativeTotal(t))
	for _, m := range []uint{2, 3, 4, 5, 6} {
		assert.Equal(t, 100.0, h.member(t, m).Balance, "member %d", m)
	}

	query := &repository.PaymentQuery{ListQuery: repository.NewListQuery(), CooperativeID: h.Cooperative.ID}
	query.Filters["bulk_run_id"] = result.BulkRunID
	payments, total, err := h.repos.Payment.List(h.ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	for _, p := range payments {
		assert.Equal(t, models.PaymentStatusApproved, p.Status)
		assert.Equal(t, models.PaymentMethodBulkApproval, p.PaymentMethod)
		require.NotNil(t, p.ApprovedBy)
		assert.Equal(t, h.Admin.MemberID, *p.ApprovedBy)
	}

	assert.Len(t, h.recorder.ofType(EventScheduleSettled), 5)
	bulk := h.recorder.ofType(EventBulkSettled)
	require.Len(t, bulk, 1)
	assert.Equal(t, 500.0, bulk[0].Amount)

	again, err := h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        plan.ID,
		Date:          testutil.Date(2025, 2, 10),
	}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Zero(t, again.ApprovedCount)
	assert.Zero(t, again.CreatedSchedulesCount)
	assert.Equal(t, 500.0, h.cooperativeTotal(t), "a repeated run credits nothing")
}

func TestBulkSettleByDate_WithoutMissingRows(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	plan := bulkCohort(t, h)
	skip := false

	result, err := h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID:           h.Cooperative.ID,
		PlanID:                  plan.ID,
		Date:                    testutil.Date(2025, 2, 10),
		IncludeMissingSchedules: &skip,
		ExcludeMemberIDs:        []uint{3},
	}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ApprovedCount)
	assert.Zero(t, result.CreatedSchedulesCount)
	assert.Zero(t, h.member(t, 3).Balance)
	assert.Zero(t, h.member(t, 5).Balance)
}

func TestBulkSettleByDate_FailingRowDoesNotStopTheRun(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	plan := bulkCohort(t, h)

	testutil.FailInsertsInto(t, h.DB, "contribution_payments", func(tx *gorm.DB) bool {
		p, ok := tx.Statement.Dest.(*models.ContributionPayment)
		return ok && p.MemberID == 3
	})

	result, err := h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        plan.ID,
		Date:          testutil.Date(2025, 2, 10),
	}, h.Admin.MemberID)
	require.NoError(t, err)

	assert.Equal(t, 4, result.ApprovedCount)
	assert.Equal(t, 1, result.SkippedCount)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, uint(3), result.Failures[0].MemberID)
	assert.Contains(t, result.Failures[0].Error, testutil.ErrSimulated.Error())

	assert.Equal(t, 400.0, h.cooperativeTotal(t))
	assert.Zero(t, h.member(t, 3).Balance, "the failed row rolled back")
	failed := h.reloadSchedule(t, result.Failures[0].ScheduleID)
	assert.Equal(t, models.ScheduleStatusPending, failed.Status)
	assert.Nil(t, failed.PaymentID)
}

func TestBulkSettleByMonth(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	bulkCohort(t, h)
	h.setNow(testutil.Date(2025, 4, 2))

	result, err := h.svc.Bulk.BulkSettleByMonth(h.ctx, BulkMonthRequest{
		CooperativeID:    h.Cooperative.ID,
		Year:             2025,
		Month:            3,
		ExcludeMemberIDs: []uint{4},
		PaymentMethod:    models.PaymentMethodCash,
	}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ApprovedCount)
	assert.Zero(t, result.CreatedSchedulesCount)
	assert.Equal(t, 200.0, result.TotalAmount)
	assert.Zero(t, h.member(t, 4).Balance)

	rows, err := h.svc.Schedule.ListOverdue(h.ctx, ScheduleScope{CooperativeID: h.Cooperative.ID, MemberID: 2}, h.Admin.MemberID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, "March 2025", r.PeriodLabel)
	}
}

func TestBulkSettlement_Guards(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	plan := bulkCohort(t, h)

	_, err := h.svc.Bulk.BulkSettleByMonth(h.ctx, BulkMonthRequest{CooperativeID: h.Cooperative.ID, Year: 2025, Month: 2}, 2)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = h.svc.Bulk.BulkSettleByMonth(h.ctx, BulkMonthRequest{CooperativeID: h.Cooperative.ID, Year: 2025, Month: 13}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        9999,
		Date:          testutil.Date(2025, 2, 10),
	}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrNotFound)

	h.svc.Bulk.locker = busyLocker{}
	_, err = h.svc.Bulk.BulkSettleByDate(h.ctx, BulkDateRequest{
		CooperativeID: h.Cooperative.ID,
		PlanID:        plan.ID,
		Date:          testutil.Date(2025, 2, 10),
	}, h.Admin.MemberID)
	assert.ErrorIs(t, err, ErrBulkInProgress)
	assert.Zero(t, h.cooperativeTotal(t))
}

func TestBulkSettlement_EmptyCohort(t *testing.T) {
	h := newHarness(t, testutil.Date(2025, 1, 10))
	bulkCohort(t, h)

	result, err := h.svc.Bulk.BulkSettleByMonth(h.ctx, BulkMonthRequest{CooperativeID: h.Cooperative.ID, Year: 2030, Month: 1}, h.Admin.MemberID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.BulkRunID)
	assert.Zero(t, result.ApprovedCount)
	assert.Empty(t, h.recorder.ofType(EventBulkSettled))
}
