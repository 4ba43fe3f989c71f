package models

import (
	"time"
)

// PaymentSchedule is one expected due-date instance of a subscription
type PaymentSchedule struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID uint       `gorm:"not null;uniqueIndex:idx_schedule_subscription_due" json:"subscription_id"`
	DueDate        time.Time  `gorm:"type:date;not null;uniqueIndex:idx_schedule_subscription_due;index" json:"due_date"`
	Amount         float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PeriodNumber   int        `gorm:"not null" json:"period_number"`
	PeriodLabel    string     `gorm:"size:50" json:"period_label"`
	Status         string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	PaidAmount     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"paid_amount"`
	PaidAt         *time.Time `json:"paid_at"`
	PaymentID      *uint      `gorm:"index" json:"payment_id"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	Subscription ContributionSubscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}

// TableName specifies the table name for PaymentSchedule
func (PaymentSchedule) TableName() string {
	return "payment_schedules"
}

// Schedule status constants
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPartial = "partial"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusWaived  = "waived"
	// ScheduleStatusOverdue is never written by this service; rows imported with it
	// are still settleable by bulk runs.
	ScheduleStatusOverdue = "overdue"
)

// SettleableScheduleStatuses are the statuses a bulk run may settle
var SettleableScheduleStatuses = []string{ScheduleStatusPending, ScheduleStatusOverdue}

// IsSettled returns true when nothing more is owed on the row
func (s *PaymentSchedule) IsSettled() bool {
	return s.Status == ScheduleStatusPaid || s.Status == ScheduleStatusWaived
}

// IsDue returns true if the row is unsettled and its due date has arrived
func (s *PaymentSchedule) IsDue(now time.Time) bool {
	return !s.IsSettled() && !startOfDay(s.DueDate).After(startOfDay(now))
}

// IsOverdue returns true if the row is unsettled and past its due date
func (s *PaymentSchedule) IsOverdue(now time.Time) bool {
	return !s.IsSettled() && startOfDay(s.DueDate).Before(startOfDay(now))
}

// DaysOverdue returns the number of whole days past due
func (s *PaymentSchedule) DaysOverdue(now time.Time) int {
	if !s.IsOverdue(now) {
		return 0
	}
	return int(startOfDay(now).Sub(startOfDay(s.DueDate)).Hours() / 24)
}

// Outstanding returns the amount still owed on the row
func (s *PaymentSchedule) Outstanding() float64 {
	if s.IsSettled() || s.PaidAmount >= s.Amount {
		return 0
	}
	return s.Amount - s.PaidAmount
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ScheduleResponse is the JSON response format for schedules
type ScheduleResponse struct {
	ID             uint       `json:"id"`
	SubscriptionID uint       `json:"subscription_id"`
	MemberID       uint       `json:"member_id,omitempty"`
	PlanID         uint       `json:"plan_id,omitempty"`
	DueDate        time.Time  `json:"due_date"`
	Amount         float64    `json:"amount"`
	PeriodNumber   int        `json:"period_number"`
	PeriodLabel    string     `json:"period_label"`
	Status         string     `json:"status"`
	PaidAmount     float64    `json:"paid_amount"`
	Outstanding    float64    `json:"outstanding"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	PaymentID      *uint      `json:"payment_id,omitempty"`
	IsDue          bool       `json:"is_due"`
	IsOverdue      bool       `json:"is_overdue"`
	DaysOverdue    int        `json:"days_overdue"`
}

// ToResponse converts PaymentSchedule to ScheduleResponse with derived due fields
func (s *PaymentSchedule) ToResponse(now time.Time) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             s.ID,
		SubscriptionID: s.SubscriptionID,
		DueDate:        s.DueDate,
		Amount:         s.Amount,
		PeriodNumber:   s.PeriodNumber,
		PeriodLabel:    s.PeriodLabel,
		Status:         s.Status,
		PaidAmount:     s.PaidAmount,
		Outstanding:    s.Outstanding(),
		PaidAt:         s.PaidAt,
		PaymentID:      s.PaymentID,
		IsDue:          s.IsDue(now),
		IsOverdue:      s.IsOverdue(now),
		DaysOverdue:    s.DaysOverdue(now),
	}
	if s.Subscription.ID != 0 {
		resp.MemberID = s.Subscription.MemberID
		resp.PlanID = s.Subscription.PlanID
	}
	return resp
}
