package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Cooperative carries the aggregate of all approved contributions
type Cooperative struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Name               string    `gorm:"size:150;not null" json:"name"`
	Currency           string    `gorm:"size:3;not null;default:NGN" json:"currency"`
	TotalContributions float64   `gorm:"type:decimal(18,2);not null;default:0" json:"total_contributions"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for Cooperative
func (Cooperative) TableName() string {
	return "cooperatives"
}

// CooperativeMember is a member's standing within one cooperative: role,
// extra permissions and running contribution balance.
type CooperativeMember struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CooperativeID uint           `gorm:"not null;uniqueIndex:idx_cooperative_member" json:"cooperative_id"`
	MemberID      uint           `gorm:"not null;uniqueIndex:idx_cooperative_member;index" json:"member_id"`
	FullName      string         `gorm:"size:150" json:"full_name"`
	Email         *string        `gorm:"size:150" json:"email"`
	Role          string         `gorm:"size:30;not null;default:member" json:"role"`
	Permissions   datatypes.JSON `json:"permissions"`
	Status        string         `gorm:"size:20;not null;default:active" json:"status"`
	Balance       float64        `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	// Associations
	Cooperative Cooperative `gorm:"foreignKey:CooperativeID" json:"-"`
}

// TableName specifies the table name for CooperativeMember
func (CooperativeMember) TableName() string {
	return "cooperative_members"
}

// Member role constants
const (
	RoleAdmin     = "admin"
	RoleTreasurer = "treasurer"
	RoleMember    = "member"
)

// Member status constants
const (
	MemberStatusActive    = "active"
	MemberStatusSuspended = "suspended"
)

// PermissionSet returns the member's explicitly granted permissions
func (m *CooperativeMember) PermissionSet() []string {
	if len(m.Permissions) == 0 {
		return nil
	}
	var perms []string
	if err := json.Unmarshal(m.Permissions, &perms); err != nil {
		return nil
	}
	return perms
}

// IsActive returns true if the member is in good standing
func (m *CooperativeMember) IsActive() bool {
	return m.Status == MemberStatusActive
}
