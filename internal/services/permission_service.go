package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// Contribution permissions
const (
	PermManagePlans         = "contributions.manage_plans"
	PermApprovePayments     = "contributions.approve_payments"
	PermViewAll             = "contributions.view_all"
	PermManageSubscriptions = "contributions.manage_subscriptions"
	permWildcard            = "*"
)

const permissionModel = `
[request_definition]
r = role, perm

[policy_definition]
p = role, perm

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.role == p.role && (p.perm == r.perm || p.perm == "*")
`

// defaultPolicies grant role-level permissions; members get extra grants
// through their own permission set
var defaultPolicies = [][]string{
	{models.RoleAdmin, permWildcard},
	{models.RoleTreasurer, PermApprovePayments},
	{models.RoleTreasurer, PermViewAll},
}

// PermissionService answers capability checks for cooperative members
type PermissionService struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	coopRepo repository.CooperativeRepository
}

// NewPermissionService builds an in-memory enforcer seeded with the default policies
func NewPermissionService(coopRepo repository.CooperativeRepository) (*PermissionService, error) {
	m, err := model.NewModelFromString(permissionModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	svc := &PermissionService{enforcer: enforcer, coopRepo: coopRepo}
	if err := svc.seed(); err != nil {
		return nil, err
	}
	return svc, nil
}

// NewPermissionServiceWithDB persists policies in the casbin_rule table so
// operators can grant role permissions without a deploy
func NewPermissionServiceWithDB(db *gorm.DB, coopRepo repository.CooperativeRepository) (*PermissionService, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}
	m, err := model.NewModelFromString(permissionModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse permission model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	svc := &PermissionService{enforcer: enforcer, coopRepo: coopRepo}
	if err := svc.seed(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *PermissionService) seed() error {
	for _, p := range defaultPolicies {
		if _, err := s.enforcer.AddPolicy(p[0], p[1]); err != nil {
			return fmt.Errorf("failed to add policy [%s, %s]: %w", p[0], p[1], err)
		}
	}
	return nil
}

// Grant adds a role-level permission
func (s *PermissionService) Grant(role, perm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.enforcer.AddPolicy(role, perm); err != nil {
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

// HasPermission reports whether a member with role and explicit
// permissionSet holds required
func (s *PermissionService) HasPermission(role string, permissionSet []string, required string) bool {
	if slices.Contains(permissionSet, required) || slices.Contains(permissionSet, permWildcard) {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed, err := s.enforcer.Enforce(role, required)
	if err != nil {
		logger.Error("permission check failed", "role", role, "permission", required, logger.Err(err))
		return false
	}
	return allowed
}

// Membership loads the actor's active membership in the cooperative
func (s *PermissionService) Membership(ctx context.Context, cooperativeID, actorID uint) (*models.CooperativeMember, error) {
	member, err := s.coopRepo.FindMember(ctx, cooperativeID, actorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindPermission, Message: "not a member of this cooperative"}
	}
	if err != nil {
		return nil, err
	}
	if !member.IsActive() {
		return nil, &Error{Kind: KindPermission, Message: "membership is not active"}
	}
	return member, nil
}

// Allows reports whether member holds required
func (s *PermissionService) Allows(member *models.CooperativeMember, required string) bool {
	return member != nil && s.HasPermission(member.Role, member.PermissionSet(), required)
}

// Require loads the actor's membership and fails with a permission error
// unless it holds required
func (s *PermissionService) Require(ctx context.Context, cooperativeID, actorID uint, required string) (*models.CooperativeMember, error) {
	member, err := s.Membership(ctx, cooperativeID, actorID)
	if err != nil {
		return nil, err
	}
	if !s.Allows(member, required) {
		return nil, permissionError(required)
	}
	return member, nil
}
