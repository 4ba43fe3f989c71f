package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	coopRepo repository.CooperativeRepository
	email    *EmailService
}

func NewNotificationService(repo repository.NotificationRepository, coopRepo repository.CooperativeRepository, email *EmailService) *NotificationService {
	return &NotificationService{repo: repo, coopRepo: coopRepo, email: email}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uint) error {
	err := s.repo.MarkAsRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError("notification", id)
	}
	return err
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// Notify stores an in-app notification for one user
func (s *NotificationService) Notify(ctx context.Context, userID uint, notifType, title, message string, data map[string]interface{}) error {
	n := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		n.Data = datatypes.JSON(raw)
	}
	return s.repo.Create(ctx, n)
}

// NotifyApprovers tells every admin and treasurer of the cooperative
func (s *NotificationService) NotifyApprovers(ctx context.Context, cooperativeID uint, notifType, title, message string, data map[string]interface{}) error {
	approvers, err := s.coopRepo.FindMembersByRole(ctx, cooperativeID, models.RoleAdmin, models.RoleTreasurer)
	if err != nil {
		return err
	}
	if len(approvers) == 0 {
		return nil
	}

	var raw datatypes.JSON
	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode notification data: %w", err)
		}
		raw = encoded
	}

	batch := make([]models.Notification, 0, len(approvers))
	for _, a := range approvers {
		t := notifType
		batch = append(batch, models.Notification{
			UserID:           a.MemberID,
			Title:            title,
			Message:          message,
			NotificationType: &t,
			Data:             raw,
		})
	}
	return s.repo.CreateBatch(ctx, batch)
}

// Handle turns committed events into member-facing notifications
func (s *NotificationService) Handle(ctx context.Context, event Event) error {
	data := map[string]interface{}{"subject_id": event.SubjectID}

	switch event.Type {
	case EventSubscriptionCreated:
		return s.Notify(ctx, event.MemberID, models.NotificationTypeSubscriptionCreated,
			"Subscription created", event.Description, data)

	case EventSubscriptionStatusChanged, EventSubscriptionAmountChanged:
		return s.Notify(ctx, event.MemberID, models.NotificationTypeSubscriptionUpdated,
			"Subscription updated", event.Description, data)

	case EventPaymentSubmitted:
		data["member_id"] = event.MemberID
		data["amount"] = event.Amount
		return s.NotifyApprovers(ctx, event.CooperativeID, models.NotificationTypePaymentSubmitted,
			"Payment awaiting approval",
			fmt.Sprintf("Member %d submitted a payment of %.2f", event.MemberID, event.Amount), data)

	case EventPaymentApproved:
		if err := s.Notify(ctx, event.MemberID, models.NotificationTypePaymentApproved,
			"Payment approved", fmt.Sprintf("Your payment of %.2f was approved", event.Amount), data); err != nil {
			return err
		}
		s.emailDecision(ctx, event, true)
		return nil

	case EventPaymentRejected:
		reason := metadataString(event.Metadata, "reason")
		data["reason"] = reason
		if err := s.Notify(ctx, event.MemberID, models.NotificationTypePaymentRejected,
			"Payment rejected", fmt.Sprintf("Your payment of %.2f was rejected: %s", event.Amount, reason), data); err != nil {
			return err
		}
		s.emailDecision(ctx, event, false)
		return nil

	case EventScheduleSettled:
		data["bulk_run_id"] = metadataString(event.Metadata, "bulk_run_id")
		if err := s.Notify(ctx, event.MemberID, models.NotificationTypeBulkSettled,
			"Contribution recorded", event.Description, data); err != nil {
			return err
		}
		s.emailBulkSettled(ctx, event)
		return nil
	}
	return nil
}

func (s *NotificationService) emailDecision(ctx context.Context, event Event, approved bool) {
	member, ok := s.memberWithEmail(ctx, event)
	if !ok {
		return
	}
	err := s.email.SendPaymentDecision(ctx, *member.Email, PaymentDecisionEmail{
		Name:      member.FullName,
		PlanName:  metadataString(event.Metadata, "plan_name"),
		PaymentID: event.SubjectID,
		Amount:    formatMoney(event.Amount),
		Balance:   formatMoney(member.Balance),
		Approved:  approved,
		Reason:    metadataString(event.Metadata, "reason"),
	})
	if err != nil {
		logger.Warn("payment decision email failed", "payment_id", event.SubjectID, logger.Err(err))
	}
}

func (s *NotificationService) emailBulkSettled(ctx context.Context, event Event) {
	member, ok := s.memberWithEmail(ctx, event)
	if !ok {
		return
	}
	err := s.email.SendBulkSettled(ctx, *member.Email, BulkSettledEmail{
		Name:    member.FullName,
		Period:  metadataString(event.Metadata, "period"),
		Amount:  formatMoney(event.Amount),
		Balance: formatMoney(member.Balance),
	})
	if err != nil {
		logger.Warn("bulk settlement email failed", "schedule_id", event.SubjectID, logger.Err(err))
	}
}

func (s *NotificationService) memberWithEmail(ctx context.Context, event Event) (*models.CooperativeMember, bool) {
	if s.email == nil {
		return nil, false
	}
	member, err := s.coopRepo.FindMember(ctx, event.CooperativeID, event.MemberID)
	if err != nil {
		logger.Debug("no membership for email", "member_id", event.MemberID, logger.Err(err))
		return nil, false
	}
	if member.Email == nil || *member.Email == "" {
		return nil, false
	}
	return member, true
}

func metadataString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}
