package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/fintera-coop/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs queued jobs on a fixed pool, fire-and-forget jobs on bounded
// goroutines, and recurring jobs on tickers. Shutdown stops the tickers and
// drains queued and fire-and-forget jobs before returning.
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	jobCtx        context.Context
	wg            sync.WaitGroup
	mu            sync.RWMutex
	closed        bool
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
	closeOnce     sync.Once
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// NewWorker creates a worker with numWorkers queue processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		jobCtx:        context.WithoutCancel(ctx),
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to the pool's queue. A full queue, or a worker that is
// shutting down, runs the job inline.
func (w *Worker) Enqueue(job Job) {
	w.mu.RLock()
	queued, closed := false, w.closed
	if !closed {
		select {
		case w.queue <- job:
			queued = true
		default:
		}
	}
	w.mu.RUnlock()

	if queued {
		return
	}
	if !closed {
		logger.Warn("worker queue full, running job inline")
	}
	w.run("inline", w.jobCtx, job)
}

// EnqueueAsync runs a job on its own goroutine, bounded by a semaphore.
// After Shutdown it runs the job inline.
func (w *Worker) EnqueueAsync(job Job) {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		w.run("inline", w.jobCtx, job)
		return
	}
	w.wg.Add(1)
	w.mu.RUnlock()

	go func() {
		defer w.wg.Done()
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()
		w.run("async", w.jobCtx, job)
	}()
}

// process runs queued jobs until the queue is closed and drained
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	name := fmt.Sprintf("worker-%d", workerID)
	for job := range w.queue {
		w.run(name, w.jobCtx, job)
	}
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed
// intervals, so a restarted process does not wait a full interval.
// Recurring jobs see the worker context and are cancelled by Shutdown.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(name, w.ctx, job)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(name, w.ctx, job)
			}
		}
	}()
	logger.Info("scheduled recurring job", "job", name, "every", interval.String())
}

// run executes one job with stats tracking and panic recovery
func (w *Worker) run(name string, ctx context.Context, job Job) {
	w.trackJobStart()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", "job", name, "panic", fmt.Sprint(r))
			w.trackJobFailure()
		}
		w.trackJobEnd()
	}()

	if err := job(ctx); err != nil {
		logger.Error("job failed", "job", name, logger.Err(err))
		w.trackJobFailure()
		return
	}
	logger.Debug("job completed", "job", name, "duration", time.Since(start).String())
}

// Shutdown cancels recurring jobs, lets queued and fire-and-forget jobs
// finish, and waits for every goroutine
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()
	})
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
