package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

func TestSubscriptionRepository_CreateDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	plan := f.FixedMonthlyPlan(t, 100, testutil.Date(2025, 1, 1))
	sub := func() *models.ContributionSubscription {
		return &models.ContributionSubscription{
			PlanID:        plan.ID,
			MemberID:      7,
			CooperativeID: plan.CooperativeID,
			Amount:        100,
			Status:        models.SubscriptionStatusActive,
			SubscribedAt:  testutil.Date(2025, 1, 1),
		}
	}

	require.NoError(t, repo.Create(ctx, sub()))
	err := repo.Create(ctx, sub())
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_subscription_plan_member"}
	assert.True(t, isUniqueViolation(pgErr, "idx_subscription_plan_member"))
	assert.False(t, isUniqueViolation(pgErr, "idx_cooperative_member"))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}, "idx_subscription_plan_member"))
	assert.False(t, isUniqueViolation(nil, "idx_subscription_plan_member"))
	assert.Equal(t, gorm.ErrDuplicatedKey, translateUnique(errors.Join(pgErr), "idx_subscription_plan_member"))
}
