package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/services"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	exportService   *services.ExportService
}

func NewScheduleHandler(scheduleService *services.ScheduleService, exportService *services.ExportService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, exportService: exportService}
}

// scope builds a cooperative-wide scope narrowed by the member_id and
// plan_id query parameters
func (h *ScheduleHandler) scope(c *gin.Context) (services.ScheduleScope, bool) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return services.ScheduleScope{}, false
	}
	return services.ScheduleScope{
		CooperativeID: coopID,
		MemberID:      queryID(c, "member_id"),
		PlanID:        queryID(c, "plan_id"),
	}, true
}

// @Summary List Schedules
// @Description Schedule rows across the cooperative. Members only see their own.
// @Tags Schedules
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param member_id query int false "Member ID"
// @Param plan_id query int false "Plan ID"
// @Param status query string false "Comma separated statuses"
// @Param from query string false "Due on or after (YYYY-MM-DD)"
// @Param to query string false "Due on or before (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/schedules [get]
func (h *ScheduleHandler) Index(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	list := listQuery(c, "status", "from", "to")
	rows, total, err := h.scheduleService.ListSchedules(c.Request.Context(), scope, list, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows, "pagination": pagination(list, total)})
}

// @Summary Cooperative Due Rows
// @Tags Schedules
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param member_id query int false "Member ID"
// @Param plan_id query int false "Plan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/schedules/due [get]
func (h *ScheduleHandler) Due(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	rows, err := h.scheduleService.ListDue(c.Request.Context(), scope, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows})
}

// @Summary Cooperative Overdue Rows
// @Tags Schedules
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param member_id query int false "Member ID"
// @Param plan_id query int false "Plan ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/schedules/overdue [get]
func (h *ScheduleHandler) Overdue(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	rows, err := h.scheduleService.ListOverdue(c.Request.Context(), scope, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": rows})
}

// @Summary Export Schedules
// @Description Download the scoped schedule as CSV or an Excel workbook
// @Tags Schedules
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param cooperative_id path int true "Cooperative ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/schedules/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, filename, err = h.exportService.ScheduleCSV(c.Request.Context(), scope, middleware.GetUserID(c))
		contentType = contentTypeCSV
	case "xlsx":
		data, filename, err = h.exportService.ScheduleWorkbook(c.Request.Context(), scope, middleware.GetUserID(c))
		contentType = contentTypeXLSX
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
