package services

import (
	"context"
	"sync"
	"time"

	"github.com/sjperalta/fintera-coop/internal/jobs"
	"github.com/sjperalta/fintera-coop/pkg/logger"
)

type JobService struct {
	worker    *jobs.Worker
	schedules *ScheduleService

	mu            sync.Mutex
	lastExtension *ExtensionSummary
	lastRunAt     *time.Time
}

func NewJobService(worker *jobs.Worker, schedules *ScheduleService) *JobService {
	return &JobService{
		worker:    worker,
		schedules: schedules,
	}
}

// ExtendSchedulesJob is the worker job that tops up continuous schedules
func (s *JobService) ExtendSchedulesJob(ctx context.Context) error {
	summary, err := s.schedules.ExtendAllContinuous(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	s.mu.Lock()
	s.lastExtension = summary
	s.lastRunAt = &now
	s.mu.Unlock()
	return nil
}

// TriggerExtension queues an extension run on the worker pool without
// waiting for it
func (s *JobService) TriggerExtension() {
	logger.Info("schedule extension triggered")
	s.worker.Enqueue(s.ExtendSchedulesJob)
}

func (s *JobService) GetStatus() map[string]interface{} {
	stats := s.worker.GetStats()
	status := map[string]interface{}{
		"active_jobs":    stats.ActiveJobs,
		"completed_jobs": stats.CompletedJobs,
		"failed_jobs":    stats.FailedJobs,
		"queue_length":   stats.QueueLength,
		"max_concurrent": stats.MaxConcurrent,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastExtension != nil {
		status["last_extension"] = s.lastExtension
		status["last_extension_at"] = s.lastRunAt
	}
	return status
}
