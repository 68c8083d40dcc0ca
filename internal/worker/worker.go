// Package worker runs background ingestion of queued file uploads.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driving"
)

// Worker processes ingest tasks from the task queue.
// It runs the ingest pipeline for each queued file.
type Worker struct {
	taskQueue driven.TaskQueue
	ingester  driving.IngestService
	logger    *slog.Logger

	// Configuration
	concurrency    int
	dequeueTimeout int // seconds
	retryAttempts  uint
	retryDelay     time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config holds configuration for the worker.
type Config struct {
	TaskQueue      driven.TaskQueue
	Ingester       driving.IngestService
	Logger         *slog.Logger
	Concurrency    int           // Number of concurrent task processors
	DequeueTimeout int           // Seconds to wait for a task before checking again
	RetryAttempts  uint          // In-process retries per task for transient failures
	RetryDelay     time.Duration // Initial backoff delay between retries
}

// New creates a new ingest worker.
func New(cfg Config) *Worker {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	dequeueTimeout := cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 5
	}

	retryAttempts := cfg.RetryAttempts
	if retryAttempts == 0 {
		retryAttempts = 3
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}

	return &Worker{
		taskQueue:      cfg.TaskQueue,
		ingester:       cfg.Ingester,
		logger:         logger,
		concurrency:    concurrency,
		dequeueTimeout: dequeueTimeout,
		retryAttempts:  retryAttempts,
		retryDelay:     retryDelay,
	}
}

// Start begins the worker loop.
// It runs until Stop is called or context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info("worker starting",
		"concurrency", w.concurrency,
		"dequeue_timeout", w.dequeueTimeout,
	)

	var wg sync.WaitGroup
	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.processLoop(ctx, workerID)
		}(i)
	}

	go func() {
		wg.Wait()
		close(w.doneCh)
	}()

	return nil
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("worker stopped")
}

// Wait blocks until the worker stops.
func (w *Worker) Wait() {
	<-w.doneCh
}

// processLoop is the main processing loop for a worker goroutine.
func (w *Worker) processLoop(ctx context.Context, workerID int) {
	logger := w.logger.With("worker_id", workerID)
	logger.Info("worker goroutine started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker context cancelled")
			return
		case <-w.stopCh:
			logger.Info("worker stop signal received")
			return
		default:
		}

		task, err := w.taskQueue.DequeueWithTimeout(ctx, w.dequeueTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			logger.Error("failed to dequeue task", "error", err)
			time.Sleep(time.Second) // Back off on error
			continue
		}

		if task == nil {
			continue
		}

		w.processTask(ctx, task, logger)
	}
}

// processTask runs the ingest pipeline for one task. Transient provider
// and storage failures are retried in process before the task is nacked
// back to the queue; permanent failures (bad input) are acked so the
// task is not redelivered.
func (w *Worker) processTask(ctx context.Context, task *domain.IngestTask, logger *slog.Logger) {
	logger = logger.With("task_id", task.ID, "filename", task.Filename, "collection", task.Collection)
	logger.Info("processing task")

	startTime := time.Now()

	var report *domain.IngestReport
	err := retry.Do(
		func() error {
			var ingestErr error
			report, ingestErr = w.ingester.IngestFile(ctx, task.Collection, task.Filename, task.Payload)
			return ingestErr
		},
		retry.Context(ctx),
		retry.Attempts(w.retryAttempts),
		retry.Delay(w.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)

	duration := time.Since(startTime)

	if err != nil {
		logger.Error("task failed",
			"duration", duration,
			"error", err,
		)

		if isTransient(err) {
			if nackErr := w.taskQueue.Nack(ctx, task.ID, err.Error()); nackErr != nil {
				logger.Error("failed to nack task", "nack_error", nackErr)
			}
			return
		}

		// Bad input will not improve on redelivery; drop the task.
		if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
			logger.Error("failed to ack task", "ack_error", ackErr)
		}
		return
	}

	logger.Info("task completed",
		"duration", duration,
		"chunks", report.Chunks,
		"stored", report.Stored,
	)

	if ackErr := w.taskQueue.Ack(ctx, task.ID); ackErr != nil {
		logger.Error("failed to ack task", "ack_error", ackErr)
	}
}

// isTransient reports whether the error is worth retrying. Unsupported
// formats, unreadable files and empty content fail the same way every
// time; provider outages and storage errors may clear.
func isTransient(err error) bool {
	return errors.Is(err, domain.ErrEmbeddingUnavailable) ||
		errors.Is(err, domain.ErrPersistence)
}

// Health reports the worker and queue status.
type Health struct {
	Running     bool   `json:"running"`
	QueueHealth bool   `json:"queue_health"`
	Error       string `json:"error,omitempty"`
}

// Health returns the health status of the worker.
func (w *Worker) Health(ctx context.Context) Health {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	health := Health{
		Running: running,
	}

	if err := w.taskQueue.Ping(ctx); err != nil {
		health.QueueHealth = false
		health.Error = err.Error()
	} else {
		health.QueueHealth = true
	}

	return health
}
