package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlySpec(start time.Time) ScheduleSpec {
	return ScheduleSpec{
		SubscriptionID: 1,
		Frequency:      models.FrequencyMonthly,
		StartDate:      start,
		Continuous:     true,
		Amount:         5000,
	}
}

func TestGenerateSchedule_MonthlyContinuous(t *testing.T) {
	now := time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC)
	rows := GenerateSchedule(monthlySpec(day(2025, 1, 1)), now)

	require.Len(t, rows, 12)
	for i, row := range rows {
		assert.Equal(t, day(2025, time.Month(i+1), 10), row.DueDate)
		assert.Equal(t, i+1, row.PeriodNumber)
		assert.Equal(t, 5000.0, row.Amount)
		assert.Equal(t, models.ScheduleStatusPending, row.Status)
	}
	assert.Equal(t, "January 2025", rows[0].PeriodLabel)
	assert.Equal(t, "December 2025", rows[11].PeriodLabel)
}

func TestGenerateSchedule_FutureStart(t *testing.T) {
	rows := GenerateSchedule(monthlySpec(day(2025, 6, 1)), day(2025, 1, 10))
	require.NotEmpty(t, rows)
	assert.Equal(t, day(2025, 6, 1), rows[0].DueDate)
	assert.Equal(t, day(2026, 5, 1), rows[len(rows)-1].DueDate)
}

func TestGenerateSchedule_PeriodPlanEndIsInclusive(t *testing.T) {
	end := day(2025, 6, 30)
	spec := ScheduleSpec{
		Frequency: models.FrequencyQuarterly,
		StartDate: day(2024, 12, 30),
		EndDate:   &end,
		Amount:    100,
	}
	rows := GenerateSchedule(spec, day(2024, 12, 1))

	require.Len(t, rows, 3)
	assert.Equal(t, day(2025, 3, 30), rows[1].DueDate)
	assert.Equal(t, day(2025, 6, 30), rows[2].DueDate)
	assert.Equal(t, "Q4 2024", rows[0].PeriodLabel)
	assert.Equal(t, "Q2 2025", rows[2].PeriodLabel)
}

func TestGenerateSchedule_CapsRuns(t *testing.T) {
	end := day(2030, 1, 1)
	spec := ScheduleSpec{Frequency: models.FrequencyDaily, StartDate: day(2025, 1, 1), EndDate: &end, Amount: 10}

	rows := GenerateSchedule(spec, day(2025, 1, 1))
	require.Len(t, rows, MaxSchedulePeriods)
	assert.Equal(t, MaxSchedulePeriods, rows[len(rows)-1].PeriodNumber)
	assert.Equal(t, "Wednesday", rows[0].PeriodLabel)
}

func TestGenerateSchedule_Weekly(t *testing.T) {
	spec := monthlySpec(day(2025, 1, 6))
	spec.Frequency = models.FrequencyWeekly

	rows := GenerateSchedule(spec, day(2025, 1, 6))
	require.Len(t, rows, 53)
	assert.Equal(t, day(2025, 1, 13), rows[1].DueDate)
	assert.Equal(t, "Week 2, 2025", rows[0].PeriodLabel)
	assert.Equal(t, day(2026, 1, 5), rows[52].DueDate)
}

func TestGenerateSchedule_IsDeterministic(t *testing.T) {
	now := day(2025, 1, 10)
	assert.Equal(t, GenerateSchedule(monthlySpec(day(2025, 1, 1)), now), GenerateSchedule(monthlySpec(day(2025, 1, 1)), now))
}

func TestDueDateFor_ClampsMonthEnds(t *testing.T) {
	anchor := day(2025, 1, 31)
	assert.Equal(t, day(2025, 2, 28), DueDateFor(anchor, models.FrequencyMonthly, 1))
	assert.Equal(t, day(2025, 3, 31), DueDateFor(anchor, models.FrequencyMonthly, 2))
	assert.Equal(t, day(2025, 4, 30), DueDateFor(anchor, models.FrequencyMonthly, 3))
	assert.Equal(t, day(2025, 2, 14), DueDateFor(anchor, models.FrequencyBiweekly, 1))
	assert.Equal(t, day(2025, 2, 28), DueDateFor(day(2024, 2, 29), models.FrequencyYearly, 1))
	assert.Equal(t, day(2025, 4, 30), DueDateFor(anchor, "", 3))
}

func TestPeriodLabel(t *testing.T) {
	due := day(2025, 3, 3)
	tests := []struct {
		frequency string
		want      string
	}{
		{models.FrequencyDaily, "Monday"},
		{models.FrequencyWeekly, "Week 10, 2025"},
		{models.FrequencyBiweekly, "Week 10, 2025"},
		{models.FrequencyMonthly, "March 2025"},
		{models.FrequencyQuarterly, "Q1 2025"},
		{models.FrequencyYearly, "2025"},
	}
	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodLabel(tt.frequency, due))
		})
	}
}

func TestExtendSchedule(t *testing.T) {
	spec := monthlySpec(day(2025, 1, 1))
	existing := GenerateSchedule(spec, day(2025, 1, 10))
	first, latest := &existing[0], &existing[len(existing)-1]

	t.Run("continues from the latest period", func(t *testing.T) {
		rows := ExtendSchedule(spec, first, latest, latest.PeriodNumber, day(2025, 10, 1))
		require.Len(t, rows, 9)
		assert.Equal(t, 13, rows[0].PeriodNumber)
		assert.Equal(t, day(2026, 1, 10), rows[0].DueDate)
		assert.Equal(t, day(2026, 9, 10), rows[8].DueDate)
	})

	t.Run("does nothing while the schedule runs far ahead", func(t *testing.T) {
		assert.Nil(t, ExtendSchedule(spec, first, latest, latest.PeriodNumber, day(2025, 6, 1)))
	})

	t.Run("numbers after an off-cadence row", func(t *testing.T) {
		rows := ExtendSchedule(spec, first, latest, 13, day(2025, 10, 1))
		require.Len(t, rows, 9)
		assert.Equal(t, 14, rows[0].PeriodNumber)
		assert.Equal(t, day(2026, 1, 10), rows[0].DueDate)
	})

	t.Run("keeps cadence when the latest row is off cadence", func(t *testing.T) {
		extra := models.PaymentSchedule{DueDate: day(2025, 12, 20), PeriodNumber: 13}
		rows := ExtendSchedule(spec, first, &extra, 13, day(2025, 10, 1))
		require.NotEmpty(t, rows)
		assert.Equal(t, 14, rows[0].PeriodNumber)
		assert.Equal(t, day(2026, 1, 10), rows[0].DueDate)
	})

	t.Run("regenerates when nothing exists", func(t *testing.T) {
		rows := ExtendSchedule(spec, nil, nil, 0, day(2025, 1, 10))
		assert.Len(t, rows, 12)
	})
}
