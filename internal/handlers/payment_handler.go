package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
	"github.com/sjperalta/fintera-coop/internal/models"
	"github.com/sjperalta/fintera-coop/internal/repository"
	"github.com/sjperalta/fintera-coop/internal/services"
	"github.com/sjperalta/fintera-coop/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	storage        *storage.LocalStorage
}

func NewPaymentHandler(paymentService *services.PaymentService, storage *storage.LocalStorage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, storage: storage}
}

// CreatePaymentRequest records a member payment. payment_date accepts
// YYYY-MM-DD or RFC 3339.
type CreatePaymentRequest struct {
	SubscriptionID   uint    `json:"subscription_id"`
	ScheduleID       *uint   `json:"schedule_id"`
	Amount           float64 `json:"amount"`
	PaymentDate      *string `json:"payment_date"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentReference *string `json:"payment_reference"`
	ReceiptURL       *string `json:"receipt_url"`
	Notes            *string `json:"notes"`
}

func (r CreatePaymentRequest) intake() (services.PaymentIntake, error) {
	intake := services.PaymentIntake{
		SubscriptionID:   r.SubscriptionID,
		ScheduleID:       r.ScheduleID,
		Amount:           r.Amount,
		PaymentMethod:    r.PaymentMethod,
		PaymentReference: r.PaymentReference,
		ReceiptURL:       r.ReceiptURL,
		Notes:            r.Notes,
	}
	var err error
	intake.PaymentDate, err = parseOptionalDate(r.PaymentDate)
	return intake, err
}

// DecisionRequest approves or rejects a pending payment
type DecisionRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// @Summary Record Payment
// @Description Submit a payment against a subscription or one of its schedule rows
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CreatePaymentRequest true "Payment"
// @Success 201 {object} models.PaymentResponse
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req CreatePaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	intake, err := req.intake()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.RecordPayment(c.Request.Context(), intake, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment.ToResponse()})
}

// @Summary List Payments
// @Description Members see their own payments, approvers see the cooperative's
// @Tags Payments
// @Produce json
// @Param cooperative_id path int true "Cooperative ID"
// @Param subscription_id query int false "Subscription ID"
// @Param member_id query int false "Member ID"
// @Param status query string false "Comma separated statuses"
// @Param payment_method query string false "Payment method"
// @Param bulk_run_id query string false "Bulk run"
// @Param start_date query string false "Paid on or after (YYYY-MM-DD)"
// @Param end_date query string false "Paid on or before (YYYY-MM-DD)"
// @Param search query string false "Reference contains"
// @Param sort query string false "field-direction, e.g. payment_date-desc"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /cooperatives/{cooperative_id}/payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	coopID, ok := pathID(c, "cooperative_id")
	if !ok {
		return
	}
	list := listQuery(c, "status", "payment_method", "bulk_run_id", "start_date", "end_date")
	query := &repository.PaymentQuery{
		ListQuery:      list,
		CooperativeID:  coopID,
		SubscriptionID: queryID(c, "subscription_id"),
		MemberID:       queryID(c, "member_id"),
	}

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), query, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, payments[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses, "pagination": pagination(list, total)})
}

// @Summary Get Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.GetPayment(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Decide Payment
// @Description Approve or reject a pending payment. Rejections need a reason.
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body DecisionRequest true "approve or reject"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/decision [post]
func (h *PaymentHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.decide(c, services.Decision(req.Decision), req.Reason)
}

// @Summary Approve Payment
// @Tags Payments
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payments/{payment_id}/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.decide(c, services.DecisionApprove, "")
}

// @Summary Reject Payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body DecisionRequest true "Reason"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	var req DecisionRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	h.decide(c, services.DecisionReject, req.Reason)
}

func (h *PaymentHandler) decide(c *gin.Context, decision services.Decision, reason string) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	result, err := h.paymentService.DecidePayment(c.Request.Context(), id, decision, reason, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"payment": result.Payment.ToResponse()}
	if result.Schedule != nil {
		body["schedule"] = result.Schedule.ToResponse(time.Now())
		body["subscription_total_paid"] = result.SubscriptionTotalPaid
		body["member_balance"] = result.MemberBalance
		body["cooperative_total"] = result.CooperativeTotal
	}
	c.JSON(http.StatusOK, body)
}

// @Summary Upload Receipt
// @Description Attach a receipt to a pending payment. Only the payer may upload.
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param receipt formData file true "Receipt image or PDF"
// @Success 200 {object} models.PaymentResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [post]
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	if c.Request.ContentLength > storage.MaxFileSize() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	defer file.Close()

	payment, err := h.paymentService.AttachReceipt(c.Request.Context(), id, file, header.Filename, header.Header.Get("Content-Type"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Download Receipt
// @Tags Payments
// @Produce octet-stream
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payments/{payment_id}/receipt [get]
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	id, ok := pathID(c, "payment_id")
	if !ok {
		return
	}
	payment, err := h.paymentService.GetPayment(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if payment.ReceiptURL == nil || !h.storage.Exists(*payment.ReceiptURL) {
		c.JSON(http.StatusNotFound, gin.H{"error": "receipt not found"})
		return
	}
	c.File(h.storage.FullPath(*payment.ReceiptURL))
}
