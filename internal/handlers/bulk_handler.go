package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/services"
)

type BulkHandler struct {
	bulkService *services.BulkSettlementService
}

func NewBulkHandler(bulkService *services.BulkSettlementService) *BulkHandler {
	return &BulkHandler{bulkService: bulkService}
}

// BulkMonthRequest settles every open row due in a calendar month
type BulkMonthRequest struct {
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	PlanID           *uint   `json:"plan_id"`
	ExcludeMemberIDs []uint  `json:"exclude_member_ids"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference *string `json:"payment_reference"`
	Notes            *string `json:"notes"`
}

// BulkDateRequest settles one plan's rows due on a day (YYYY-MM-DD)
type BulkDateRequest struct {
	PlanID                  uint    `json:"plan_id"`
	Date                    string  `json:"date"`
	ExcludeMemberIDs        []uint  `json:"exclude_member_ids"`
	IncludeMissingSchedules *bool   `json:"include_missing_schedules"`
	PaymentMethod           string  `json:"payment_method"`
	PaymentReference        *string `json:"payment_reference"`
	Notes                   *string `json:"notes"`
}

// @Summary Bulk Settle Month
// @Description Approve a settlement for every open row due in the month. Per-row failures are reported, not fatal.
// @Tags Bulk Settlement
// @Accept json
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param request body BulkMonthRequest true "Month cohort"
// @Success 200 {object} services.BulkResult
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/bulk_settlements/month [post]
func (h *BulkHandler) SettleMonth(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	var req BulkMonthRequest
	if err := BindNestedOrFlat(c, "bulk_settlement", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.bulkService.BulkSettleByMonth(c.Request.Context(), services.BulkMonthRequest{
		CooperativeID:    coopID,
		Year:             req.Year,
		Month:            req.Month,
		PlanID:           req.PlanID,
		ExcludeMemberIDs: req.ExcludeMemberIDs,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		Notes:            req.Notes,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Bulk Settle Date
// @Description Approve a settlement for one plan's rows due on a date, creating rows for subscribers who lack one
// @Tags Bulk Settlement
// @Accept json
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param request body BulkDateRequest true "Date cohort"
// @Success 200 {object} services.BulkResult
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/bulk_settlements/date [post]
func (h *BulkHandler) SettleDate(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	var req BulkDateRequest
	if err := BindNestedOrFlat(c, "bulk_settlement", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	day, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	result, err := h.bulkService.BulkSettleByDate(c.Request.Context(), services.BulkDateRequest{
		CooperativeID:           coopID,
		PlanID:                  req.PlanID,
		Date:                    day,
		ExcludeMemberIDs:        req.ExcludeMemberIDs,
		IncludeMissingSchedules: req.IncludeMissingSchedules,
		PaymentMethod:           req.PaymentMethod,
		PaymentReference:        req.PaymentReference,
		Notes:                   req.Notes,
	}, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
