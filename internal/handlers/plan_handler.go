package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/services"
)

type PlanHandler struct {
	planService         *services.PlanService
	subscriptionService *services.SubscriptionService
}

func NewPlanHandler(planService *services.PlanService, subscriptionService *services.SubscriptionService) *PlanHandler {
	return &PlanHandler{planService: planService, subscriptionService: subscriptionService}
}

// CreatePlanRequest accepts dates as YYYY-MM-DD or RFC 3339
type CreatePlanRequest struct {
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Category         string   `json:"category"`
	ContributionType string   `json:"contribution_type"`
	FixedAmount      *float64 `json:"fixed_amount"`
	MinAmount        *float64 `json:"min_amount"`
	MaxAmount        *float64 `json:"max_amount"`
	DurationType     string   `json:"duration_type"`
	Frequency        *string  `json:"frequency"`
	StartDate        *string  `json:"start_date"`
	EndDate          *string  `json:"end_date"`
}

func (r CreatePlanRequest) definition() (services.PlanDefinition, error) {
	def := services.PlanDefinition{
		Name:             r.Name,
		Description:      r.Description,
		Category:         r.Category,
		ContributionType: r.ContributionType,
		FixedAmount:      r.FixedAmount,
		MinAmount:        r.MinAmount,
		MaxAmount:        r.MaxAmount,
		DurationType:     r.DurationType,
		Frequency:        r.Frequency,
	}
	var err error
	if def.StartDate, err = parseOptionalDate(r.StartDate); err != nil {
		return def, err
	}
	def.EndDate, err = parseOptionalDate(r.EndDate)
	return def, err
}

// SubscribeRequest is the body for joining a plan
type SubscribeRequest struct {
	Amount float64 `json:"amount"`
}

// @Summary List Plans
// @Description List a cooperative's contribution plans
// @Tags Plans
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param is_active query string false "true or false"
// @Param category query string false "compulsory or optional"
// @Param duration_type query string false "continuous or period"
// @Param search query string false "Name contains"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/plans [get]
func (h *PlanHandler) Index(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	query := listQuery(c, "is_active", "category", "duration_type")

	plans, total, err := h.planService.ListPlans(c.Request.Context(), coopID, query, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PlanResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, plans[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"plans": responses, "pagination": pagination(query, total)})
}

// @Summary Create Plan
// @Description Define a contribution plan. Accepts {"plan": {...}} or a flat body.
// @Tags Plans
// @Accept json
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param request body CreatePlanRequest true "Plan definition"
// @Success 201 {object} models.PlanResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	var req CreatePlanRequest
	if err := BindNestedOrFlat(c, "plan", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	def, err := req.definition()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), coopID, def, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": plan.ToResponse()})
}

// @Summary Get Plan
// @Tags Plans
// @Produce json
// @Param plan_id path int true "Plan ID"
// @Success 200 {object} models.PlanResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /plans/{plan_id} [get]
func (h *PlanHandler) Show(c *gin.Context) {
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	plan, err := h.planService.GetPlan(c.Request.Context(), planID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan.ToResponse()})
}

// @Summary Update Plan
// @Description Change a plan's name, description or active flag
// @Tags Plans
// @Accept json
// @Produce json
// @Param plan_id path int true "Plan ID"
// @Param request body services.PlanUpdate true "Fields to change"
// @Success 200 {object} models.PlanResponse
// @Security BearerAuth
// @Router /plans/{plan_id} [patch]
func (h *PlanHandler) Update(c *gin.Context) {
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	var update services.PlanUpdate
	if err := BindNestedOrFlat(c, "plan", &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), planID, update, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan.ToResponse()})
}

// @Summary Subscribe
// @Description Subscribe the current member to a plan and generate their schedule
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param plan_id path int true "Plan ID"
// @Param request body SubscribeRequest false "Amount (ignored for fixed plans)"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /plans/{plan_id}/subscriptions [post]
func (h *PlanHandler) Subscribe(c *gin.Context) {
	planID, ok := pathID(c, "plan_id")
	if !ok {
		return
	}
	var req SubscribeRequest
	if err := BindNestedOrFlat(c, "subscription", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.subscriptionService.Subscribe(c.Request.Context(), planID, req.Amount, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"subscription":      result.Subscription.ToResponse(),
		"schedules_created": result.SchedulesCreated,
	})
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
