package models

import (
	"time"
)

// LedgerEntry is an immutable record of a balance-affecting event for a member
type LedgerEntry struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CooperativeID uint      `json:"cooperative_id" gorm:"not null;index"`
	MemberID      uint      `json:"member_id" gorm:"not null;index"`
	Type          string    `json:"type" gorm:"size:30;not null;index"`
	Amount        float64   `json:"amount" gorm:"type:decimal(15,2);not null"`
	BalanceAfter  float64   `json:"balance_after" gorm:"type:decimal(15,2);not null"`
	ReferenceID   *uint     `json:"reference_id,omitempty" gorm:"index"` // contribution payment id
	Description   string    `json:"description" gorm:"not null"`
	CreatedBy     uint      `json:"created_by" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

// Entry type constants
const (
	LedgerTypeContribution = "contribution"
)

// TableName specifies the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// LedgerEntryResponse is the JSON response format for ledger entries
type LedgerEntryResponse struct {
	ID            uint      `json:"id"`
	CooperativeID uint      `json:"cooperative_id"`
	MemberID      uint      `json:"member_id"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	BalanceAfter  float64   `json:"balance_after"`
	ReferenceID   *uint     `json:"reference_id,omitempty"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts LedgerEntry to LedgerEntryResponse
func (e *LedgerEntry) ToResponse() LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		CooperativeID: e.CooperativeID,
		MemberID:      e.MemberID,
		Type:          e.Type,
		Amount:        e.Amount,
		BalanceAfter:  e.BalanceAfter,
		ReferenceID:   e.ReferenceID,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}
