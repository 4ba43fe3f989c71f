package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjperalta/fintera-coop/internal/config"
	"github.com/sjperalta/fintera-coop/internal/jobs"
	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/services"
	"github.com/sjperalta/fintera-coop/internal/storage"
	"github.com/sjperalta/fintera-coop/internal/testutil"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// api serves the full route table against an in-memory database
type api struct {
	*testutil.Fixture
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewDB(t)
	f := testutil.NewFixture(t, db)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	worker := jobs.NewWorker(1)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{ScheduleLookAheadMonths: 12}
	// events are delivered inline; the worker only serves the job routes
	svcs, err := services.NewServices(repository.NewRepositories(db), nil, store, nil, cfg, db)
	require.NoError(t, err)
	svcs.Job = services.NewJobService(worker, svcs.Schedule)

	router := gin.New()
	NewHandlers(svcs, store).Register(router.Group("/api/v1"), testSecret)
	return &api{Fixture: f, router: router}
}

func (a *api) do(t *testing.T, method, path string, userID uint, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return a.doAs(t, method, path, userID, "", body)
}

func (a *api) doAs(t *testing.T, method, path string, userID uint, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := middleware.IssueToken(testSecret, userID, "", role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func today() time.Time {
	now := time.Now()
	return testutil.Date(now.Year(), now.Month(), now.Day())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrAmountOutOfRange, http.StatusUnprocessableEntity},
		{services.ErrMissingReason, http.StatusUnprocessableEntity},
		{services.ErrNotOwner, http.StatusForbidden},
		{services.ErrAlreadySubscribed, http.StatusConflict},
		{services.ErrPlanInactive, http.StatusConflict},
		{services.ErrBulkInProgress, http.StatusConflict},
		{fmt.Errorf("wrapped: %w", services.ErrAlreadyPaid), http.StatusConflict},
		{errors.New("database is down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestListQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500&sort=due_date-desc&status=paid&ignored=x&search=ada", nil)

	q := listQuery(c, "status", "from")

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 20, q.PerPage, "out of range per_page keeps the default")
	assert.Equal(t, "due_date", q.SortBy)
	assert.Equal(t, "desc", q.SortDir)
	assert.Equal(t, "ada", q.Search)
	assert.Equal(t, map[string]string{"status": "paid"}, q.Filters)

	p := pagination(q, 41)
	assert.Equal(t, int64(3), p["total_pages"])
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2025-02-10")
	require.NoError(t, err)
	assert.True(t, d.Equal(testutil.Date(2025, 2, 10)))

	d, err = parseDate("2025-02-10T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Hour())

	_, err = parseDate("10/02/2025")
	assert.Error(t, err)

	none, err := parseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAuthAndHealth(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/notifications", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodGet, "/plans/abc", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.doAs(t, http.MethodGet, "/jobs/status", 1, "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.doAs(t, http.MethodGet, "/jobs/status", 1, middleware.RoleAdmin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "queue_length")
}

func TestPlanAndSubscriptionFlow(t *testing.T) {
	a := newAPI(t)
	a.AddMember(t, 2, models.RoleMember)
	coop := fmt.Sprintf("/cooperatives/%d", a.Cooperative.ID)

	w := a.do(t, http.MethodPost, coop+"/plans", 1, gin.H{"plan": gin.H{
		"name":              "Monthly savings",
		"contribution_type": "fixed",
		"fixed_amount":      100,
		"duration_type":     "continuous",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	planID := uint(decode(t, w)["plan"].(map[string]interface{})["id"].(float64))

	w = a.do(t, http.MethodPost, coop+"/plans", 2, gin.H{"name": "Nope", "contribution_type": "notional", "duration_type": "continuous"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, coop+"/plans", 1, gin.H{"name": "Bad", "start_date": "soon"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, http.MethodPost, fmt.Sprintf("/plans/%d/subscriptions", planID), 2, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Greater(t, body["schedules_created"].(float64), 0.0)
	subID := uint(body["subscription"].(map[string]interface{})["id"].(float64))

	w = a.do(t, http.MethodPost, fmt.Sprintf("/plans/%d/subscriptions", planID), 2, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode(t, w)["kind"])

	w = a.do(t, http.MethodGet, fmt.Sprintf("/subscriptions/%d/schedules", subID), 2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["schedules"])

	w = a.do(t, http.MethodPatch, fmt.Sprintf("/subscriptions/%d/status", subID), 2, gin.H{"status": "paused"})
	assert.Equal(t, http.StatusConflict, w.Code, "members cannot pause")

	w = a.do(t, http.MethodPatch, fmt.Sprintf("/subscriptions/%d/amount", subID), 2, gin.H{"amount": 250})
	assert.Equal(t, http.StatusConflict, w.Code, "fixed plans keep their amount")

	w = a.do(t, http.MethodGet, coop+"/subscriptions", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["pagination"].(map[string]interface{})["total"])
}

func TestPaymentDecisionFlow(t *testing.T) {
	a := newAPI(t)
	a.AddMember(t, 2, models.RoleMember)
	plan := a.FixedMonthlyPlan(t, 100, today())
	sub := a.Subscribe(t, plan, 2, 100, today())

	w := a.do(t, http.MethodPost, "/payments", 2, gin.H{"subscription_id": sub.ID, "amount": 100, "payment_method": "cash"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := decode(t, w)["payment"].(map[string]interface{})
	assert.Equal(t, models.PaymentStatusPending, payment["status"])
	paymentPath := fmt.Sprintf("/payments/%d", uint(payment["id"].(float64)))

	w = a.do(t, http.MethodPost, paymentPath+"/approve", 2, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, paymentPath+"/decision", 1, gin.H{"decision": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, http.MethodPost, paymentPath+"/decision", 1, gin.H{"decision": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, models.PaymentStatusApproved, body["payment"].(map[string]interface{})["status"])
	assert.Equal(t, 100.0, body["member_balance"])

	w = a.do(t, http.MethodPost, paymentPath+"/reject", 1, gin.H{"reason": "late"})
	assert.Equal(t, http.StatusConflict, w.Code, "already decided")

	w = a.do(t, http.MethodPost, "/payments", 2, gin.H{"subscription_id": sub.ID, "amount": 50})
	require.Equal(t, http.StatusCreated, w.Code)
	second := fmt.Sprintf("/payments/%d", uint(decode(t, w)["payment"].(map[string]interface{})["id"].(float64)))
	w = a.do(t, http.MethodPost, second+"/reject", 1, gin.H{"reason": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, http.MethodGet, fmt.Sprintf("/cooperatives/%d/members/2/ledger", a.Cooperative.ID), 2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode(t, w)["ledger"].(map[string]interface{})
	assert.Equal(t, true, ledger["reconciled"])
	assert.Equal(t, 100.0, ledger["balance"])

	w = a.do(t, http.MethodGet, fmt.Sprintf("/cooperatives/%d/members/2/ledger", a.Cooperative.ID), 3, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBulkAndExportEndpoints(t *testing.T) {
	a := newAPI(t)
	a.AddMember(t, 2, models.RoleMember)
	plan := a.FixedMonthlyPlan(t, 100, today())
	coop := fmt.Sprintf("/cooperatives/%d", a.Cooperative.ID)

	w := a.do(t, http.MethodPost, fmt.Sprintf("/plans/%d/subscriptions", plan.ID), 2, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, coop+"/bulk_settlements/date", 1, gin.H{"plan_id": plan.ID, "date": "tomorrow"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = a.do(t, http.MethodPost, coop+"/bulk_settlements/date", 2, gin.H{"plan_id": plan.ID, "date": today().Format("2006-01-02")})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, coop+"/bulk_settlements/date", 1, gin.H{"plan_id": plan.ID, "date": today().Format("2006-01-02")})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode(t, w)
	assert.Equal(t, 1.0, result["approved_count"])
	assert.Equal(t, 100.0, result["total_amount"])
	assert.NotEmpty(t, result["bulk_run_id"])

	w = a.do(t, http.MethodGet, coop+"/schedules/export?format=csv", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, contentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	w = a.do(t, http.MethodGet, coop+"/schedules/export?format=pdf", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, coop+"/audits", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["audits"])

	w = a.do(t, http.MethodGet, "/notifications", 2, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Greater(t, decode(t, w)["unread"].(float64), 0.0)
	w = a.do(t, http.MethodPost, "/notifications/mark_all_as_read", 2, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
