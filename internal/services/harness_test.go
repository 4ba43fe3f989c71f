package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

// recordingSubscriber keeps every delivered event
type recordingSubscriber struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSubscriber) Handle(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSubscriber) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// harness wires every service against an in-memory database. Events are
// delivered inline since no worker is attached.
type harness struct {
	*testutil.Fixture
	ctx      context.Context
	repos    *repository.Repositories
	svc      *Services
	recorder *recordingSubscriber
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()

	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)
	repos := repository.NewRepositories(db)

	cfg := &config.Config{ScheduleLookAheadMonths: 12}
	svc, err := NewServices(repos, nil, nil, nil, cfg, db)
	require.NoError(t, err)

	recorder := &recordingSubscriber{}
	svc.Events.Subscribe(recorder)

	h := &harness{Fixture: f, ctx: context.Background(), repos: repos, svc: svc, recorder: recorder}
	h.setNow(now)
	return h
}

// setNow pins every service clock to now
func (h *harness) setNow(now time.Time) {
	clock := func() time.Time { return now }
	h.svc.Plan.now = clock
	h.svc.Subscription.now = clock
	h.svc.Schedule.now = clock
	h.svc.Payment.now = clock
	h.svc.Bulk.now = clock
	h.svc.Export.now = clock
}

func (h *harness) notionalPlan(t *testing.T, min, max float64, start time.Time) *models.ContributionPlan {
	t.Helper()
	plan, err := h.svc.Plan.CreatePlan(h.ctx, h.Cooperative.ID, PlanDefinition{
		Name:             "Voluntary savings",
		ContributionType: models.ContributionTypeNotional,
		MinAmount:        &min,
		MaxAmount:        &max,
		DurationType:     models.DurationTypeContinuous,
		StartDate:        &start,
	}, h.Admin.MemberID)
	require.NoError(t, err)
	return plan
}

func (h *harness) fixedPlan(t *testing.T, amount float64, start time.Time) *models.ContributionPlan {
	t.Helper()
	plan, err := h.svc.Plan.CreatePlan(h.ctx, h.Cooperative.ID, PlanDefinition{
		Name:             "Monthly dues",
		Category:         models.PlanCategoryCompulsory,
		ContributionType: models.ContributionTypeFixed,
		FixedAmount:      &amount,
		DurationType:     models.DurationTypeContinuous,
		StartDate:        &start,
	}, h.Admin.MemberID)
	require.NoError(t, err)
	return plan
}

func (h *harness) reloadSchedule(t *testing.T, id uint) *models.PaymentSchedule {
	t.Helper()
	row, err := h.repos.Schedule.FindByID(h.ctx, id)
	require.NoError(t, err)
	return row
}

func (h *harness) member(t *testing.T, memberID uint) *models.CooperativeMember {
	t.Helper()
	m, err := h.repos.Cooperative.FindMember(h.ctx, h.Cooperative.ID, memberID)
	require.NoError(t, err)
	return m
}

func (h *harness) cooperativeTotal(t *testing.T) float64 {
	t.Helper()
	coop, err := h.repos.Cooperative.FindByID(h.ctx, h.Cooperative.ID)
	require.NoError(t, err)
	return coop.TotalContributions
}
