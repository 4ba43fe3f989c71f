package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

func monthlyRows(sub *models.ContributionSubscription, n int) []models.PaymentSchedule {
	rows := make([]models.PaymentSchedule, 0, n)
	for i := 0; i < n; i++ {
		due := testutil.Date(2025, 1, 10).AddDate(0, i, 0)
		rows = append(rows, models.PaymentSchedule{
			SubscriptionID: sub.ID,
			DueDate:        due,
			Amount:         sub.Amount,
			PeriodNumber:   i + 1,
			PeriodLabel:    due.Format("January 2006"),
			Status:         models.ScheduleStatusPending,
		})
	}
	return rows
}

func TestScheduleRepository_CreateBatchIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))

	inserted, err := repo.CreateBatch(ctx, monthlyRows(sub, 12))
	require.NoError(t, err)
	assert.EqualValues(t, 12, inserted)

	inserted, err = repo.CreateBatch(ctx, monthlyRows(sub, 12))
	require.NoError(t, err)
	assert.Zero(t, inserted)

	inserted, err = repo.CreateBatch(ctx, monthlyRows(sub, 14))
	require.NoError(t, err)
	assert.EqualValues(t, 2, inserted)

	rows, err := repo.FindBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 14)

	latest, err := repo.FindLatestBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 14, latest.PeriodNumber)

	first, err := repo.FindFirstBySubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, first.DueDate.Equal(testutil.Date(2025, 1, 10)))
}

func TestScheduleRepository_Cohorts(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewScheduleRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	march := testutil.Date(2025, 3, 10)

	a := f.Subscribe(t, plan, 10, 5000, testutil.Date(2025, 1, 10))
	b := f.Subscribe(t, plan, 11, 5000, testutil.Date(2025, 1, 10))
	c := f.Subscribe(t, plan, 12, 5000, testutil.Date(2025, 1, 10))
	d := f.Subscribe(t, plan, 13, 5000, testutil.Date(2025, 1, 10))

	f.Schedule(t, a, march, 3)
	f.Schedule(t, b, march, 3)
	paid := f.Schedule(t, c, march, 3)
	require.NoError(t, db.Model(paid).Update("status", models.ScheduleStatusPaid).Error)
	f.Schedule(t, a, testutil.Date(2025, 4, 10), 4)

	t.Run("month cohort skips paid rows and excluded members", func(t *testing.T) {
		rows, err := repo.FindSettleableByMonth(ctx, MonthCohort{
			CooperativeID:    f.Cooperative.ID,
			Year:             2025,
			Month:            3,
			ExcludeMemberIDs: []uint{11},
		})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, a.ID, rows[0].SubscriptionID)
		assert.Equal(t, plan.ID, rows[0].Subscription.Plan.ID)
	})

	t.Run("date cohort is scoped to the plan and day", func(t *testing.T) {
		rows, err := repo.FindSettleableByDate(ctx, DateCohort{CooperativeID: f.Cooperative.ID, PlanID: plan.ID, Date: march})
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("active subscriptions without a row on the day", func(t *testing.T) {
		subs, err := NewSubscriptionRepository(db).FindActiveWithoutScheduleOn(ctx, plan.ID, march, nil)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, d.ID, subs[0].ID)

		subs, err = NewSubscriptionRepository(db).FindActiveWithoutScheduleOn(ctx, plan.ID, march, []uint{13})
		require.NoError(t, err)
		assert.Empty(t, subs)
	})

	t.Run("due and overdue listings", func(t *testing.T) {
		query := &ScheduleQuery{ListQuery: NewListQuery(), CooperativeID: f.Cooperative.ID}

		due, err := repo.FindDue(ctx, query, march)
		require.NoError(t, err)
		assert.Len(t, due, 2)

		overdue, err := repo.FindOverdue(ctx, query, march)
		require.NoError(t, err)
		assert.Empty(t, overdue)

		overdue, err = repo.FindOverdue(ctx, query, testutil.Date(2025, 4, 11))
		require.NoError(t, err)
		assert.Len(t, overdue, 3)
	})
}
