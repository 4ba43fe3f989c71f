package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CooperativeID uint           `gorm:"not null;index" json:"cooperative_id"`
	Action        string         `gorm:"size:50;not null;index" json:"action"` // PLAN_CREATED, PAYMENT_APPROVED, BULK_SETTLED, ...
	Description   string         `gorm:"type:text" json:"description"`
	Metadata      datatypes.JSON `json:"metadata"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
