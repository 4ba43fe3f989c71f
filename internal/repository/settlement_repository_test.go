package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

func reload[T any](t *testing.T, db *gorm.DB, id uint) *T {
	t.Helper()
	var v T
	require.NoError(t, db.First(&v, id).Error)
	return &v
}

func TestSettlementRepository_ApprovePayment(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	payment := f.PendingPayment(t, sub, 5000)
	at := time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC)

	t.Run("credits every balance together", func(t *testing.T) {
		s, err := repo.ApprovePayment(ctx, ApprovalInput{PaymentID: payment.ID, ActorID: f.Admin.MemberID, At: at})
		require.NoError(t, err)

		assert.Equal(t, models.PaymentStatusApproved, s.Payment.Status)
		assert.Equal(t, 5000.0, s.SubscriptionTotalPaid)
		assert.Equal(t, 5000.0, s.MemberBalance)
		assert.Equal(t, 5000.0, s.CooperativeTotal)
		assert.Equal(t, 5000.0, s.Ledger.Amount)
		assert.Equal(t, 5000.0, s.Ledger.BalanceAfter)
		require.NotNil(t, s.Ledger.ReferenceID)
		assert.Equal(t, payment.ID, *s.Ledger.ReferenceID)

		member, err := NewCooperativeRepository(db).FindMember(ctx, f.Cooperative.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, 5000.0, member.Balance)
		assert.Equal(t, models.RoleMember, member.Role)

		stored := reload[models.ContributionPayment](t, db, payment.ID)
		require.NotNil(t, stored.ApprovedBy)
		assert.Equal(t, f.Admin.MemberID, *stored.ApprovedBy)
	})

	t.Run("second approval is refused without crediting again", func(t *testing.T) {
		_, err := repo.ApprovePayment(ctx, ApprovalInput{PaymentID: payment.ID, ActorID: f.Admin.MemberID, At: at})
		assert.ErrorIs(t, err, ErrPaymentNotPending)

		assert.Equal(t, 5000.0, reload[models.ContributionSubscription](t, db, sub.ID).TotalPaid)
		assert.Equal(t, 5000.0, reload[models.Cooperative](t, db, f.Cooperative.ID).TotalContributions)

		entries, err := NewLedgerRepository(db).FindByReference(ctx, payment.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("balance after follows the running balance", func(t *testing.T) {
		second := f.PendingPayment(t, sub, 2500)
		s, err := repo.ApprovePayment(ctx, ApprovalInput{PaymentID: second.ID, ActorID: f.Admin.MemberID, At: at})
		require.NoError(t, err)
		assert.Equal(t, 7500.0, s.Ledger.BalanceAfter)
		assert.Equal(t, 7500.0, s.SubscriptionTotalPaid)

		sum, err := NewLedgerRepository(db).SumByMember(ctx, f.Cooperative.ID, 7)
		require.NoError(t, err)
		assert.Equal(t, s.MemberBalance, sum)
	})
}

func TestSettlementRepository_ConcurrentApprovalCreditsOnce(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	payment := f.PendingPayment(t, sub, 5000)

	const approvers = 2
	errs := make([]error, approvers)
	var start, wg sync.WaitGroup
	start.Add(1)
	for i := 0; i < approvers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start.Wait()
			_, errs[i] = repo.ApprovePayment(ctx, ApprovalInput{PaymentID: payment.ID, ActorID: f.Admin.MemberID, At: time.Now()})
		}(i)
	}
	start.Done()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrPaymentNotPending)
	}
	assert.Equal(t, 1, succeeded)

	entries, err := NewLedgerRepository(db).FindByReference(ctx, payment.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 5000.0, reload[models.ContributionSubscription](t, db, sub.ID).TotalPaid)
	assert.Equal(t, 5000.0, reload[models.Cooperative](t, db, f.Cooperative.ID).TotalContributions)

	member, err := NewCooperativeRepository(db).FindMember(ctx, f.Cooperative.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, member.Balance)
}

func TestSettlementRepository_ApprovePaymentRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	f.AddMember(t, 7, models.RoleMember)
	payment := f.PendingPayment(t, sub, 5000)

	testutil.FailInsertsInto(t, db, "ledger_entries", nil)

	_, err := repo.ApprovePayment(context.Background(), ApprovalInput{PaymentID: payment.ID, ActorID: f.Admin.MemberID, At: time.Now()})
	require.ErrorIs(t, err, testutil.ErrSimulated)

	assert.Equal(t, models.PaymentStatusPending, reload[models.ContributionPayment](t, db, payment.ID).Status)
	assert.Zero(t, reload[models.ContributionSubscription](t, db, sub.ID).TotalPaid)
	assert.Zero(t, reload[models.Cooperative](t, db, f.Cooperative.ID).TotalContributions)

	member, err := NewCooperativeRepository(db).FindMember(context.Background(), f.Cooperative.ID, 7)
	require.NoError(t, err)
	assert.Zero(t, member.Balance)
}

func TestSettlementRepository_RejectPayment(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	payment := f.PendingPayment(t, sub, 5000)

	rejected, err := repo.RejectPayment(ctx, RejectionInput{PaymentID: payment.ID, ActorID: 1, Reason: "receipt unreadable", At: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "receipt unreadable", *rejected.RejectionReason)
	assert.Zero(t, reload[models.ContributionSubscription](t, db, sub.ID).TotalPaid)

	_, err = repo.ApprovePayment(ctx, ApprovalInput{PaymentID: payment.ID, ActorID: 1, At: time.Now()})
	assert.ErrorIs(t, err, ErrPaymentNotPending)
}

func TestSettlementRepository_SettleSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	row := f.Schedule(t, sub, testutil.Date(2025, 3, 10), 3)
	runID := "run-1"
	at := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)

	s, err := repo.SettleSchedule(ctx, ScheduleSettlementInput{
		ScheduleID:    row.ID,
		ActorID:       f.Admin.MemberID,
		PaymentMethod: models.PaymentMethodBulkApproval,
		BulkRunID:     &runID,
		At:            at,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusApproved, s.Payment.Status)
	assert.Equal(t, models.PaymentMethodBulkApproval, s.Payment.PaymentMethod)
	require.NotNil(t, s.Payment.DueDate)
	assert.True(t, s.Payment.DueDate.Equal(row.DueDate))
	assert.Equal(t, 5000.0, s.MemberBalance)

	stored := reload[models.PaymentSchedule](t, db, row.ID)
	assert.Equal(t, models.ScheduleStatusPaid, stored.Status)
	assert.Equal(t, 5000.0, stored.PaidAmount)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, s.Payment.ID, *stored.PaymentID)

	_, err = repo.SettleSchedule(ctx, ScheduleSettlementInput{ScheduleID: row.ID, ActorID: 1, PaymentMethod: models.PaymentMethodBulkApproval, At: at})
	assert.ErrorIs(t, err, ErrScheduleNotSettleable)
	assert.Equal(t, 5000.0, reload[models.ContributionSubscription](t, db, sub.ID).TotalPaid)
}

func TestSettlementRepository_SettleOverdueSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	row := f.Schedule(t, sub, testutil.Date(2025, 2, 10), 2)
	require.NoError(t, db.Model(row).Update("status", models.ScheduleStatusOverdue).Error)

	_, err := repo.SettleSchedule(context.Background(), ScheduleSettlementInput{ScheduleID: row.ID, ActorID: 1, PaymentMethod: models.PaymentMethodBulkApproval, At: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusPaid, reload[models.PaymentSchedule](t, db, row.ID).Status)
}

func TestSettlementRepository_ApplyToSchedule(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	row := f.Schedule(t, sub, testutil.Date(2025, 1, 10), 1)
	payment := f.PendingPayment(t, sub, 2000)
	require.NoError(t, db.Model(row).Update("payment_id", payment.ID).Error)

	first := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	updated, err := repo.ApplyToSchedule(ctx, payment.ID, 2000, first)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.ScheduleStatusPartial, updated.Status)
	assert.Nil(t, updated.PaidAt)

	second := first.AddDate(0, 0, 3)
	updated, err = repo.ApplyToSchedule(ctx, payment.ID, 3000, second)
	require.NoError(t, err)
	assert.Equal(t, models.ScheduleStatusPaid, updated.Status)
	assert.Equal(t, 5000.0, updated.PaidAmount)
	require.NotNil(t, updated.PaidAt)
	assert.True(t, updated.PaidAt.Equal(second))

	none, err := repo.ApplyToSchedule(ctx, payment.ID+100, 10, second)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSettlementRepository_ApplyToScheduleKeepsConcurrentIncrements(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSettlementRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 5000, testutil.Date(2025, 1, 1))
	sub := f.Subscribe(t, plan, 7, 5000, testutil.Date(2025, 1, 10))
	row := f.Schedule(t, sub, testutil.Date(2025, 1, 10), 1)
	payment := f.PendingPayment(t, sub, 5000)
	require.NoError(t, db.Model(row).Update("payment_id", payment.ID).Error)

	t.Run("increment written by another writer survives", func(t *testing.T) {
		_, err := repo.ApplyToSchedule(ctx, payment.ID, 1000, time.Now())
		require.NoError(t, err)
		require.NoError(t, db.Model(&models.PaymentSchedule{}).Where("id = ?", row.ID).
			Update("paid_amount", gorm.Expr("paid_amount + ?", 1000)).Error)

		updated, err := repo.ApplyToSchedule(ctx, payment.ID, 1000, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 3000.0, updated.PaidAmount)
		assert.Equal(t, models.ScheduleStatusPartial, updated.Status)
	})

	t.Run("parallel applies add up", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.ApplyToSchedule(ctx, payment.ID, 500, time.Now())
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored := reload[models.PaymentSchedule](t, db, row.ID)
		assert.Equal(t, 5000.0, stored.PaidAmount)
		assert.Equal(t, models.ScheduleStatusPaid, stored.Status)
		assert.NotNil(t, stored.PaidAt)
	})
}
