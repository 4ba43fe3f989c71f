package services

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
)

// MemberLedger is a page of a member's ledger with their running balance
type MemberLedger struct {
	Entries    []models.LedgerEntryResponse `json:"entries"`
	Total      int64                        `json:"total"`
	Balance    float64                      `json:"balance"`
	LedgerSum  float64                      `json:"ledger_sum"`
	Reconciled bool                         `json:"reconciled"`
}

type LedgerService struct {
	repo     repository.LedgerRepository
	coopRepo repository.CooperativeRepository
	perms    *PermissionService
}

func NewLedgerService(repo repository.LedgerRepository, coopRepo repository.CooperativeRepository, perms *PermissionService) *LedgerService {
	return &LedgerService{repo: repo, coopRepo: coopRepo, perms: perms}
}

// MemberLedger returns the member's entries and checks the balance counter
// against the ledger sum
func (s *LedgerService) MemberLedger(ctx context.Context, cooperativeID, memberID uint, query *repository.ListQuery, actorID uint) (*MemberLedger, error) {
	actor, err := s.perms.Membership(ctx, cooperativeID, actorID)
	if err != nil {
		return nil, err
	}
	if memberID != actorID && !s.perms.Allows(actor, PermViewAll) {
		return nil, permissionError(PermViewAll)
	}

	member, err := s.coopRepo.FindMember(ctx, cooperativeID, memberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError("member", memberID)
	}
	if err != nil {
		return nil, err
	}

	entries, total, err := s.repo.FindByMember(ctx, cooperativeID, memberID, query)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.SumByMember(ctx, cooperativeID, memberID)
	if err != nil {
		return nil, err
	}

	out := &MemberLedger{
		Entries:    make([]models.LedgerEntryResponse, 0, len(entries)),
		Total:      total,
		Balance:    member.Balance,
		LedgerSum:  sum,
		Reconciled: math.Abs(sum-member.Balance) < 0.005,
	}
	for i := range entries {
		out.Entries = append(out.Entries, entries[i].ToResponse())
	}
	return out, nil
}
