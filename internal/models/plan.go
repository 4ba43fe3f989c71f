package models

import (
	"time"
)

// ContributionPlan defines how much, how often and for how long members contribute
type ContributionPlan struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	CooperativeID    uint       `gorm:"not null;index" json:"cooperative_id"`
	Name             string     `gorm:"size:150;not null" json:"name"`
	Description      *string    `gorm:"type:text" json:"description"`
	Category         string     `gorm:"size:20;not null;default:optional" json:"category"`
	ContributionType string     `gorm:"size:20;not null" json:"contribution_type"`
	FixedAmount      *float64   `gorm:"type:decimal(15,2)" json:"fixed_amount"`
	MinAmount        *float64   `gorm:"type:decimal(15,2)" json:"min_amount"`
	MaxAmount        *float64   `gorm:"type:decimal(15,2)" json:"max_amount"`
	DurationType     string     `gorm:"size:20;not null" json:"duration_type"`
	Frequency        *string    `gorm:"size:20" json:"frequency"`
	StartDate        time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate          *time.Time `gorm:"type:date" json:"end_date"`
	IsActive         bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy        uint       `gorm:"not null" json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Cooperative Cooperative `gorm:"foreignKey:CooperativeID" json:"-"`
}

// TableName specifies the table name for ContributionPlan
func (ContributionPlan) TableName() string {
	return "contribution_plans"
}

// Plan category constants
const (
	PlanCategoryCompulsory = "compulsory"
	PlanCategoryOptional   = "optional"
)

// Contribution type constants
const (
	ContributionTypeFixed    = "fixed"
	ContributionTypeNotional = "notional"
)

// Duration type constants
const (
	DurationTypeContinuous = "continuous"
	DurationTypePeriod     = "period"
)

// Frequency constants
const (
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
	FrequencyBiweekly  = "biweekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// EffectiveFrequency returns the plan frequency, monthly when unset
func (p *ContributionPlan) EffectiveFrequency() string {
	if p.Frequency == nil || *p.Frequency == "" {
		return FrequencyMonthly
	}
	return *p.Frequency
}

// IsFixed returns true for fixed-amount plans
func (p *ContributionPlan) IsFixed() bool {
	return p.ContributionType == ContributionTypeFixed
}

// IsContinuous returns true for plans without an end date
func (p *ContributionPlan) IsContinuous() bool {
	return p.DurationType == DurationTypeContinuous
}

// AcceptsAmount reports whether a member may commit to amount on this plan.
// Fixed plans ignore the requested amount, see CommittedAmount.
func (p *ContributionPlan) AcceptsAmount(amount float64) bool {
	if p.IsFixed() {
		return true
	}
	if amount <= 0 {
		return false
	}
	if p.MinAmount != nil && amount < *p.MinAmount {
		return false
	}
	if p.MaxAmount != nil && amount > *p.MaxAmount {
		return false
	}
	return true
}

// CommittedAmount is the amount a subscription binds to
func (p *ContributionPlan) CommittedAmount(requested float64) float64 {
	if p.IsFixed() && p.FixedAmount != nil {
		return *p.FixedAmount
	}
	return requested
}

// PlanResponse is the JSON response format for plans
type PlanResponse struct {
	ID               uint       `json:"id"`
	CooperativeID    uint       `json:"cooperative_id"`
	Name             string     `json:"name"`
	Description      *string    `json:"description,omitempty"`
	Category         string     `json:"category"`
	ContributionType string     `json:"contribution_type"`
	FixedAmount      *float64   `json:"fixed_amount,omitempty"`
	MinAmount        *float64   `json:"min_amount,omitempty"`
	MaxAmount        *float64   `json:"max_amount,omitempty"`
	DurationType     string     `json:"duration_type"`
	Frequency        string     `json:"frequency"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToResponse converts ContributionPlan to PlanResponse
func (p *ContributionPlan) ToResponse() PlanResponse {
	return PlanResponse{
		ID:               p.ID,
		CooperativeID:    p.CooperativeID,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		ContributionType: p.ContributionType,
		FixedAmount:      p.FixedAmount,
		MinAmount:        p.MinAmount,
		MaxAmount:        p.MaxAmount,
		DurationType:     p.DurationType,
		Frequency:        p.EffectiveFrequency(),
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
	}
}
