package driven

import (
	"context"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// TaskQueue queues uploaded files for background ingestion.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing
	Enqueue(ctx context.Context, task *domain.IngestTask) error

	// DequeueWithTimeout retrieves the next task, waiting up to timeout
	// seconds. Returns (nil, nil) when no task is available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.IngestTask, error)

	// Ack acknowledges successful completion of a task
	Ack(ctx context.Context, taskID string) error

	// Nack returns a task to the queue after a failure so it can be
	// redelivered, or marks it failed once its attempts are exhausted
	Nack(ctx context.Context, taskID string, reason string) error

	// Ping checks if the queue backend is healthy
	Ping(ctx context.Context) error

	// Close releases queue resources
	Close() error
}
