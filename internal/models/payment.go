package models

import (
	"time"
)

// ContributionPayment is a member-submitted payment toward a subscription
type ContributionPayment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	SubscriptionID   uint       `gorm:"not null;index" json:"subscription_id"`
	MemberID         uint       `gorm:"not null;index" json:"member_id"`
	CooperativeID    uint       `gorm:"not null;index" json:"cooperative_id"`
	Amount           float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentDate      time.Time  `gorm:"not null" json:"payment_date"`
	DueDate          *time.Time `gorm:"type:date" json:"due_date"`
	PaymentMethod    string     `gorm:"size:50;not null;default:bank_transfer" json:"payment_method"`
	PaymentReference *string    `gorm:"size:120" json:"payment_reference"`
	ReceiptURL       *string    `gorm:"column:receipt_url" json:"receipt_url"`
	Notes            *string    `gorm:"type:text" json:"notes"`
	Status           string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	ApprovedBy       *uint      `gorm:"index" json:"approved_by"`
	ApprovedAt       *time.Time `gorm:"index" json:"approved_at"`
	RejectionReason  *string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	BulkRunID        *string    `gorm:"size:36;index" json:"bulk_run_id,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Subscription ContributionSubscription `gorm:"foreignKey:SubscriptionID" json:"-"`
}

// TableName specifies the table name for ContributionPayment
func (ContributionPayment) TableName() string {
	return "contribution_payments"
}

// Payment status constants
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

// Payment method constants
const (
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodCard         = "card"
	PaymentMethodBulkApproval = "bulk_approval"
)

// MayApprove returns true if payment can be approved
func (p *ContributionPayment) MayApprove() bool {
	return p.Status == PaymentStatusPending
}

// MayReject returns true if payment can be rejected
func (p *ContributionPayment) MayReject() bool {
	return p.Status == PaymentStatusPending
}

// IsTerminal returns true once an admin has decided the payment
func (p *ContributionPayment) IsTerminal() bool {
	return p.Status == PaymentStatusApproved || p.Status == PaymentStatusRejected
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID               uint       `json:"id"`
	SubscriptionID   uint       `json:"subscription_id"`
	MemberID         uint       `json:"member_id"`
	CooperativeID    uint       `json:"cooperative_id"`
	Amount           float64    `json:"amount"`
	PaymentDate      time.Time  `json:"payment_date"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	PaymentMethod    string     `json:"payment_method"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	ReceiptURL       *string    `json:"receipt_url,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	Status           string     `json:"status"`
	ApprovedBy       *uint      `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	BulkRunID        *string    `json:"bulk_run_id,omitempty"`
	HasReceipt       bool       `json:"has_receipt"`
}

// ToResponse converts ContributionPayment to PaymentResponse
func (p *ContributionPayment) ToResponse() PaymentResponse {
	return PaymentResponse{
		ID:               p.ID,
		SubscriptionID:   p.SubscriptionID,
		MemberID:         p.MemberID,
		CooperativeID:    p.CooperativeID,
		Amount:           p.Amount,
		PaymentDate:      p.PaymentDate,
		DueDate:          p.DueDate,
		PaymentMethod:    p.PaymentMethod,
		PaymentReference: p.PaymentReference,
		ReceiptURL:       p.ReceiptURL,
		Notes:            p.Notes,
		Status:           p.Status,
		ApprovedBy:       p.ApprovedBy,
		ApprovedAt:       p.ApprovedAt,
		RejectionReason:  p.RejectionReason,
		BulkRunID:        p.BulkRunID,
		HasReceipt:       p.ReceiptURL != nil && *p.ReceiptURL != "",
	}
}
