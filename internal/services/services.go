package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/jobs"
	"github.com/sjperalta/fintera-coop/internal/lock"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/storage"
)

// Services holds all service instances
type Services struct {
	Permission   *PermissionService
	Plan         *PlanService
	Subscription *SubscriptionService
	Schedule     *ScheduleService
	Payment      *PaymentService
	Bulk         *BulkSettlementService
	Ledger       *LedgerService
	Notification *NotificationService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
	Job          *JobService
	Events       *EventDispatcher
}

// NewServices creates all service instances. Committed events reach the
// audit log and member notifications through the worker pool.
func NewServices(repos *repository.Repositories, worker *jobs.Worker, receipts *storage.LocalStorage, locker lock.Locker, cfg *config.Config, db *gorm.DB) (*Services, error) {
	var (
		perms *PermissionService
		err   error
	)
	if cfg.CasbinUseDB {
		perms, err = NewPermissionServiceWithDB(db, repos.Cooperative)
	} else {
		perms, err = NewPermissionService(repos.Cooperative)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize permissions: %w", err)
	}

	emailSvc := NewEmailService(cfg.SMTP)
	notificationSvc := NewNotificationService(repos.Notification, repos.Cooperative, emailSvc)
	auditSvc := NewAuditService(repos.Audit, perms)
	events := NewEventDispatcher(worker, auditSvc, notificationSvc)

	scheduleSvc := NewScheduleService(repos.Schedule, repos.Subscription, perms, events, cfg.ScheduleLookAheadMonths)

	var store ReceiptStore
	if receipts != nil {
		store = receipts
	}

	return &Services{
		Permission:   perms,
		Plan:         NewPlanService(repos.Plan, repos.Cooperative, perms, events),
		Subscription: NewSubscriptionService(repos.Subscription, repos.Plan, scheduleSvc, perms, events),
		Schedule:     scheduleSvc,
		Payment:      NewPaymentService(repos.Payment, repos.Subscription, repos.Schedule, repos.Settlement, perms, events, store),
		Bulk:         NewBulkSettlementService(repos.Schedule, repos.Subscription, repos.Plan, repos.Settlement, perms, events, locker, cfg.BulkLockTTL),
		Ledger:       NewLedgerService(repos.Ledger, repos.Cooperative, perms),
		Notification: notificationSvc,
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       NewExportService(scheduleSvc, repos.Ledger, repos.Cooperative, perms),
		Job:          NewJobService(worker, scheduleSvc),
		Events:       events,
	}, nil
}
