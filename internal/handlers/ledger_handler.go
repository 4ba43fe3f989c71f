package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/services"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
	exportService *services.ExportService
}

func NewLedgerHandler(ledgerService *services.LedgerService, exportService *services.ExportService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService, exportService: exportService}
}

// @Summary Member Ledger
// @Description A member's ledger entries with their balance and whether the two reconcile
// @Tags Ledger
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param member_id path int true "Member ID"
// @Param type query string false "Entry type"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} services.MemberLedger
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/members/{member_id}/ledger [get]
func (h *LedgerHandler) Show(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "member_id")
	if !ok {
		return
	}
	list := listQuery(c, "type")

	ledger, err := h.ledgerService.MemberLedger(c.Request.Context(), coopID, memberID, list, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger": ledger, "pagination": pagination(list, ledger.Total)})
}

// @Summary Member Statement
// @Description Download a member's statement as PDF
// @Tags Ledger
// @Produce application/pdf
// @Param cooperative_id path int true "Cooperative ID"
// @Param member_id path int true "Member ID"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/members/{member_id}/statement [get]
func (h *LedgerHandler) Statement(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	memberID, ok := pathID(c, "member_id")
	if !ok {
		return
	}

	pdf, filename, err := h.exportService.MemberStatementPDF(c.Request.Context(), coopID, memberID, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
