package handlers

import (
	"github.com/sjperalta/fintera-coop/internal/services"
	"github.com/sjperalta/fintera-coop/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Plan         *PlanHandler
	Subscription *SubscriptionHandler
	Schedule     *ScheduleHandler
	Payment      *PaymentHandler
	Bulk         *BulkHandler
	Ledger       *LedgerHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Plan:         NewPlanHandler(svcs.Plan, svcs.Subscription),
		Subscription: NewSubscriptionHandler(svcs.Subscription, svcs.Schedule),
		Schedule:     NewScheduleHandler(svcs.Schedule, svcs.Export),
		Payment:      NewPaymentHandler(svcs.Payment, storage),
		Bulk:         NewBulkHandler(svcs.Bulk),
		Ledger:       NewLedgerHandler(svcs.Ledger, svcs.Export),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
