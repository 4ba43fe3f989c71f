package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/services"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
	scheduleService     *services.ScheduleService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService, scheduleService *services.ScheduleService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService, scheduleService: scheduleService}
}

// @Summary List Subscriptions
// @Description Members see their own subscriptions, approvers see the whole cooperative
// @Tags Subscriptions
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param plan_id query int false "Plan ID"
// @Param member_id query int false "Member ID"
// @Param status query string false "active, paused or cancelled"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/subscriptions [get]
func (h *SubscriptionHandler) Index(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	list := listQuery(c, "status")
	query := &repository.SubscriptionQuery{
		ListQuery:     list,
		CooperativeID: coopID,
		PlanID:        queryID(c, "plan_id"),
		MemberID:      queryID(c, "member_id"),
	}

	subs, total, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), query, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		responses = append(responses, subs[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": responses, "pagination": pagination(list, total)})
}

// @Summary Get Subscription
// @Tags Subscriptions
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Success 200 {object} models.SubscriptionResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /subscriptions/{subscription_id} [get]
func (h *SubscriptionHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub.ToResponse()})
}

// @Summary Change Subscription Status
// @Description Pause and resume are admin-only; the owner may cancel
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Param request body services.SubscriptionStatusUpdate true "Target status"
// @Success 200 {object} models.SubscriptionResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/status [patch]
func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	var update services.SubscriptionStatusUpdate
	if err := BindNestedOrFlat(c, "subscription", &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := h.subscriptionService.UpdateSubscriptionStatus(c.Request.Context(), id, update, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub.ToResponse()})
}

// @Summary Change Subscription Amount
// @Description Only notional plans accept a new amount; existing schedule rows keep theirs
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Param request body services.SubscriptionAmountUpdate true "New amount"
// @Success 200 {object} models.SubscriptionResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/amount [patch]
func (h *SubscriptionHandler) UpdateAmount(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	var update services.SubscriptionAmountUpdate
	if err := BindNestedOrFlat(c, "subscription", &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := h.subscriptionService.UpdateSubscriptionAmount(c.Request.Context(), id, update, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription": sub.ToResponse()})
}

// @Summary Extend Schedules
// @Description Append rows to a continuous subscription whose schedule is running out
// @Tags Schedules
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/extend_schedules [post]
func (h *SubscriptionHandler) Extend(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	// visibility check before touching the schedule
	if _, err := h.subscriptionService.GetSubscription(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.scheduleService.ExtendSchedules(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscription_id": id, "schedules_created": created})
}

// @Summary List Subscription Schedule
// @Tags Schedules
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Param status query string false "pending, overdue or paid"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due on or before (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/schedules [get]
func (h *SubscriptionHandler) Schedules(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	list := listQuery(c, "status", "from", "to")
	rows, total, err := h.scheduleService.ListSchedules(c.Request.Context(), services.ScheduleScope{SubscriptionID: id}, list, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows, "pagination": pagination(list, total)})
}

// @Summary Due Schedule Rows
// @Description Open rows due on or before today
// @Tags Schedules
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/schedules/due [get]
func (h *SubscriptionHandler) Due(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	rows, err := h.scheduleService.ListDue(c.Request.Context(), services.ScheduleScope{SubscriptionID: id}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows})
}

// @Summary Overdue Schedule Rows
// @Description Open rows past their due date
// @Tags Schedules
// @Produce json
// @Param subscription_id path int true "Subscription ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /subscriptions/{subscription_id}/schedules/overdue [get]
func (h *SubscriptionHandler) Overdue(c *gin.Context) {
	id, ok := pathID(c, "subscription_id")
	if !ok {
		return
	}
	rows, err := h.scheduleService.ListOverdue(c.Request.Context(), services.ScheduleScope{SubscriptionID: id}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows})
}
