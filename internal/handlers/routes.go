package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/middleware"
)

// Register mounts every API route on v1. Everything except the health
// check requires a bearer token; cooperative roles are checked by the
// services.
func (h *Handlers) Register(v1 *gin.RouterGroup, jwtSecret string) {
	v1.GET("/health", h.Health.Index)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtSecret))

	coop := protected.Group("/cooperatives/:cooperative_id")
	{
		coop.GET("/plans", h.Plan.Index)
		coop.POST("/plans", h.Plan.Create)

		coop.GET("/subscriptions", h.Subscription.Index)

		coop.GET("/schedules", h.Schedule.Index)
		coop.GET("/schedules/due", h.Schedule.Due)
		coop.GET("/schedules/overdue", h.Schedule.Overdue)
		coop.GET("/schedules/export", h.Schedule.Export)

		coop.GET("/payments", h.Payment.Index)

		coop.POST("/bulk_settlements/month", h.Bulk.SettleMonth)
		coop.POST("/bulk_settlements/date", h.Bulk.SettleDate)

		coop.GET("/members/:member_id/ledger", h.Ledger.Show)
		coop.GET("/members/:member_id/statement", h.Ledger.Statement)

		coop.GET("/audits", h.Audit.Index)
	}

	plans := protected.Group("/plans/:plan_id")
	{
		plans.GET("", h.Plan.Show)
		plans.PATCH("", h.Plan.Update)
		plans.POST("/subscriptions", h.Plan.Subscribe)
	}

	subs := protected.Group("/subscriptions/:subscription_id")
	{
		subs.GET("", h.Subscription.Show)
		subs.PATCH("/status", h.Subscription.UpdateStatus)
		subs.PATCH("/amount", h.Subscription.UpdateAmount)
		subs.POST("/extend_schedules", h.Subscription.Extend)
		subs.GET("/schedules", h.Subscription.Schedules)
		subs.GET("/schedules/due", h.Subscription.Due)
		subs.GET("/schedules/overdue", h.Subscription.Overdue)
	}

	protected.POST("/payments", h.Payment.Create)
	payments := protected.Group("/payments/:payment_id")
	{
		payments.GET("", h.Payment.Show)
		payments.POST("/decision", h.Payment.Decide)
		payments.POST("/approve", h.Payment.Approve)
		payments.POST("/reject", h.Payment.Reject)
		payments.POST("/receipt", h.Payment.UploadReceipt)
		payments.GET("/receipt", h.Payment.DownloadReceipt)
	}

	// static route first so "mark_all_as_read" is not taken as an ID
	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.Index)
		notifications.POST("/mark_all_as_read", h.Notification.MarkAllAsRead)
		notifications.POST("/:notification_id/read", h.Notification.MarkAsRead)
	}

	jobs := protected.Group("/jobs")
	jobs.Use(middleware.RequireAdmin())
	{
		jobs.GET("/status", h.Job.Status)
		jobs.POST("/extend_schedules", h.Job.ExtendSchedules)
	}
}
