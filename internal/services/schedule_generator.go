package services

import (
	"fmt"
	"time"

	"github.com/sjperalta/fintera-coop/internal/models"
)

const (
	// DefaultLookAheadMonths bounds generation for continuous plans
	DefaultLookAheadMonths = 12
	// MaxSchedulePeriods caps a single generation run
	MaxSchedulePeriods = 365
	// extendWithinMonths triggers extension once the last row is this close
	extendWithinMonths = 3
)

// ScheduleSpec is the plan snapshot a schedule is generated from
type ScheduleSpec struct {
	SubscriptionID  uint
	Frequency       string
	StartDate       time.Time
	EndDate         *time.Time
	Continuous      bool
	Amount          float64
	LookAheadMonths int
}

// NewScheduleSpec snapshots plan and the subscription's committed amount
func NewScheduleSpec(sub *models.ContributionSubscription, plan *models.ContributionPlan, lookAheadMonths int) ScheduleSpec {
	return ScheduleSpec{
		SubscriptionID:  sub.ID,
		Frequency:       plan.EffectiveFrequency(),
		StartDate:       plan.StartDate,
		EndDate:         plan.EndDate,
		Continuous:      plan.IsContinuous(),
		Amount:          sub.Amount,
		LookAheadMonths: lookAheadMonths,
	}
}

func (s ScheduleSpec) lookAhead() int {
	if s.LookAheadMonths <= 0 {
		return DefaultLookAheadMonths
	}
	return s.LookAheadMonths
}

// lastDueDate is the final day a row may fall on for a window opening at start
func (s ScheduleSpec) lastDueDate(start time.Time) time.Time {
	if !s.Continuous && s.EndDate != nil {
		return truncateDay(*s.EndDate)
	}
	return start.AddDate(0, s.lookAhead(), 0).AddDate(0, 0, -1)
}

// GenerateSchedule lays out the rows for a subscription from scratch. The
// window opens at max(plan start, now); rows are anchored on that day.
func GenerateSchedule(spec ScheduleSpec, now time.Time) []models.PaymentSchedule {
	start := truncateDay(spec.StartDate)
	if today := truncateDay(now); today.After(start) {
		start = today
	}
	return buildSchedule(spec, start, 0, 1, spec.lastDueDate(start), MaxSchedulePeriods)
}

// ExtendSchedule continues an existing schedule. first and latest are the
// subscription's first and latest rows by due date and maxPeriod its highest
// period number; with no rows it generates from scratch. New rows keep the
// cadence anchored on first and are numbered after maxPeriod, so rows added
// off cadence by bulk settlement never share a number. Returns nil when the
// latest row is more than three months out.
func ExtendSchedule(spec ScheduleSpec, first, latest *models.PaymentSchedule, maxPeriod int, now time.Time) []models.PaymentSchedule {
	if latest == nil || first == nil {
		return GenerateSchedule(spec, now)
	}

	today := truncateDay(now)
	lastDue := truncateDay(latest.DueDate)
	if lastDue.After(today.AddDate(0, extendWithinMonths, 0)) {
		return nil
	}

	anchor := truncateDay(first.DueDate)
	next := 0
	for !DueDateFor(anchor, spec.Frequency, next).After(lastDue) {
		next++
	}
	if maxPeriod < latest.PeriodNumber {
		maxPeriod = latest.PeriodNumber
	}
	return buildSchedule(spec, anchor, next, maxPeriod+1, spec.lastDueDate(today), MaxSchedulePeriods)
}

// buildSchedule emits rows whose due dates are index steps from anchor,
// starting at firstIndex and numbered from firstPeriod, until last or limit
func buildSchedule(spec ScheduleSpec, anchor time.Time, firstIndex, firstPeriod int, last time.Time, limit int) []models.PaymentSchedule {
	rows := make([]models.PaymentSchedule, 0)
	for i := 0; i < limit; i++ {
		due := DueDateFor(anchor, spec.Frequency, firstIndex+i)
		if due.After(last) {
			break
		}
		rows = append(rows, models.PaymentSchedule{
			SubscriptionID: spec.SubscriptionID,
			DueDate:        due,
			Amount:         spec.Amount,
			PeriodNumber:   firstPeriod + i,
			PeriodLabel:    PeriodLabel(spec.Frequency, due),
			Status:         models.ScheduleStatusPending,
		})
	}
	return rows
}

// DueDateFor returns the index-th due date after anchor. Month based
// frequencies clamp to the last day of shorter months without drifting.
func DueDateFor(anchor time.Time, frequency string, index int) time.Time {
	anchor = truncateDay(anchor)
	switch frequency {
	case models.FrequencyDaily:
		return anchor.AddDate(0, 0, index)
	case models.FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*index)
	case models.FrequencyBiweekly:
		return anchor.AddDate(0, 0, 14*index)
	case models.FrequencyQuarterly:
		return addMonthsClamped(anchor, 3*index)
	case models.FrequencyYearly:
		return addMonthsClamped(anchor, 12*index)
	default:
		return addMonthsClamped(anchor, index)
	}
}

// PeriodLabel renders a human readable period for a due date
func PeriodLabel(frequency string, due time.Time) string {
	switch frequency {
	case models.FrequencyDaily:
		return due.Weekday().String()
	case models.FrequencyWeekly, models.FrequencyBiweekly:
		year, week := due.ISOWeek()
		return fmt.Sprintf("Week %d, %d", week, year)
	case models.FrequencyQuarterly:
		return fmt.Sprintf("Q%d %d", (int(due.Month())-1)/3+1, due.Year())
	case models.FrequencyYearly:
		return fmt.Sprintf("%d", due.Year())
	default:
		return due.Format("January 2006")
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(firstOfTarget); d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(firstOfMonth time.Time) int {
	return firstOfMonth.AddDate(0, 1, -1).Day()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
