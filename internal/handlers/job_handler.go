package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sjperalta/fintera-coop/internal/services"
)

type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobSvc *services.JobService) *JobHandler {
	return &JobHandler{
		jobService: jobSvc,
	}
}

// Status returns the current worker status
// @Summary Get background job status
// @Description Get statistics about background jobs (active, completed, failed, queue length)
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetStatus())
}

// ExtendSchedules queues an extension pass over every continuous subscription
// @Summary Queue schedule extension
// @Description Queue a run that tops up continuous subscriptions whose schedules are running out
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 202 {object} map[string]string
// @Router /jobs/extend_schedules [post]
func (h *JobHandler) ExtendSchedules(c *gin.Context) {
	h.jobService.TriggerExtension()
	c.JSON(http.StatusAccepted, gin.H{"message": "schedule extension queued"})
}
