package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_MatchesKind(t *testing.T) {
	assert.ErrorIs(t, ErrAlreadySubscribed, ErrConflict)
	assert.ErrorIs(t, ErrAmountOutOfRange, ErrValidation)
	assert.NotErrorIs(t, ErrAlreadySubscribed, ErrValidation)
	assert.NotErrorIs(t, ErrAlreadyProcessed, ErrAlreadyPaid)

	wrapped := fmt.Errorf("subscribe: %w", ErrPlanInactive)
	assert.ErrorIs(t, wrapped, ErrPlanInactive)
	assert.ErrorIs(t, wrapped, ErrState)
	assert.Equal(t, KindState, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(fmt.Errorf("boom")))
}

func TestError_Helpers(t *testing.T) {
	err := notFoundError("plan", 4)
	assert.EqualError(t, err, "plan 4 not found")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, validationError("bad %s", "input"), ErrValidation)
	assert.ErrorIs(t, permissionError(PermApprovePayments), ErrPermission)
}
