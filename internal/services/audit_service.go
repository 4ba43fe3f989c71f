package services

import (
	"context"
	"encoding/json"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"gorm.io/datatypes"
)

// AuditService is the activity sink: every committed event becomes an audit row
type AuditService struct {
	repo  repository.AuditRepository
	perms *PermissionService
}

func NewAuditService(repo repository.AuditRepository, perms *PermissionService) *AuditService {
	return &AuditService{repo: repo, perms: perms}
}

// Record appends an audit entry
func (s *AuditService) Record(ctx context.Context, actorID uint, action, description string, cooperativeID uint, metadata map[string]interface{}) error {
	entry := &models.AuditLog{
		UserID:        actorID,
		CooperativeID: cooperativeID,
		Action:        action,
		Description:   description,
	}
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	return s.repo.Create(ctx, entry)
}

// Handle records every event
func (s *AuditService) Handle(ctx context.Context, event Event) error {
	return s.Record(ctx, event.ActorID, string(event.Type), event.Description, event.CooperativeID, event.Metadata)
}

// List retrieves a cooperative's audit logs for actors who can view everything
func (s *AuditService) List(ctx context.Context, cooperativeID, actorID uint, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	if _, err := s.perms.Require(ctx, cooperativeID, actorID, PermViewAll); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, cooperativeID, query)
}
