package models

import (
	"time"
)

// ContributionSubscription binds a member to a plan at a committed amount
type ContributionSubscription struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	PlanID        uint       `gorm:"not null;uniqueIndex:idx_subscription_plan_member" json:"plan_id"`
	MemberID      uint       `gorm:"not null;uniqueIndex:idx_subscription_plan_member;index" json:"member_id"`
	CooperativeID uint       `gorm:"not null;index" json:"cooperative_id"`
	Amount        float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status        string     `gorm:"size:20;not null;default:active;index" json:"status"`
	TotalPaid     float64    `gorm:"type:decimal(15,2);not null;default:0" json:"total_paid"`
	SubscribedAt  time.Time  `gorm:"not null" json:"subscribed_at"`
	PausedAt      *time.Time `json:"paused_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Plan ContributionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName specifies the table name for ContributionSubscription
func (ContributionSubscription) TableName() string {
	return "contribution_subscriptions"
}

// Subscription status constants
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"
)

// IsActive returns true if the subscription accepts payments
func (s *ContributionSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// MayPause returns true if subscription can be paused
func (s *ContributionSubscription) MayPause() bool {
	return s.Status == SubscriptionStatusActive
}

// MayResume returns true if subscription can be resumed
func (s *ContributionSubscription) MayResume() bool {
	return s.Status == SubscriptionStatusPaused
}

// MayCancel returns true if subscription can be cancelled
func (s *ContributionSubscription) MayCancel() bool {
	return s.Status == SubscriptionStatusActive || s.Status == SubscriptionStatusPaused
}

// SubscriptionResponse is the JSON response format for subscriptions
type SubscriptionResponse struct {
	ID            uint          `json:"id"`
	PlanID        uint          `json:"plan_id"`
	PlanName      string        `json:"plan_name,omitempty"`
	MemberID      uint          `json:"member_id"`
	CooperativeID uint          `json:"cooperative_id"`
	Amount        float64       `json:"amount"`
	Status        string        `json:"status"`
	TotalPaid     float64       `json:"total_paid"`
	SubscribedAt  time.Time     `json:"subscribed_at"`
	PausedAt      *time.Time    `json:"paused_at,omitempty"`
	CancelledAt   *time.Time    `json:"cancelled_at,omitempty"`
	Plan          *PlanResponse `json:"plan,omitempty"`
}

// ToResponse converts ContributionSubscription to SubscriptionResponse
func (s *ContributionSubscription) ToResponse() SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:            s.ID,
		PlanID:        s.PlanID,
		MemberID:      s.MemberID,
		CooperativeID: s.CooperativeID,
		Amount:        s.Amount,
		Status:        s.Status,
		TotalPaid:     s.TotalPaid,
		SubscribedAt:  s.SubscribedAt,
		PausedAt:      s.PausedAt,
		CancelledAt:   s.CancelledAt,
	}
	if s.Plan.ID != 0 {
		plan := s.Plan.ToResponse()
		resp.Plan = &plan
		resp.PlanName = s.Plan.Name
	}
	return resp
}
