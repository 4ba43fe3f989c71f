package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Plan         PlanRepository
	Subscription SubscriptionRepository
	Schedule     ScheduleRepository
	Payment      PaymentRepository
	Settlement   SettlementRepository
	Ledger       LedgerRepository
	Cooperative  CooperativeRepository
	Notification NotificationRepository
	Audit        AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Schedule:     NewScheduleRepository(db),
		Payment:      NewPaymentRepository(db),
		Settlement:   NewSettlementRepository(db),
		Ledger:       NewLedgerRepository(db),
		Cooperative:  NewCooperativeRepository(db),
		Notification: NewNotificationRepository(db),
		Audit:        NewAuditRepository(db),
	}
}
