package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of an ingest task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// IngestTask is a queued request to ingest one uploaded file.
// Payload carries the raw file bytes (base64 on the wire via JSON).
type IngestTask struct {
	// ID is the unique identifier for this task
	ID string `json:"id"`

	// Filename is the original name of the uploaded file; extraction
	// dispatches on its extension
	Filename string `json:"filename"`

	// Collection is the target embedding collection
	Collection string `json:"collection"`

	// Payload contains the raw file bytes
	Payload []byte `json:"payload"`

	// Status is the current state of the task
	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum delivery count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	// CreatedAt is when the task was enqueued
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified
	UpdatedAt time.Time `json:"updated_at"`
}

// NewIngestTask creates a pending ingest task for one file.
func NewIngestTask(filename, collection string, payload []byte) *IngestTask {
	now := time.Now()
	return &IngestTask{
		ID:          uuid.NewString(),
		Filename:    filename,
		Collection:  collection,
		Payload:     payload,
		Status:      TaskStatusPending,
		Attempts:    0,
		MaxAttempts: 3,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkProcessing transitions the task to processing and counts the attempt.
func (t *IngestTask) MarkProcessing() {
	t.Status = TaskStatusProcessing
	t.Attempts++
	t.UpdatedAt = time.Now()
}

// MarkCompleted transitions the task to completed.
func (t *IngestTask) MarkCompleted() {
	t.Status = TaskStatusCompleted
	t.UpdatedAt = time.Now()
}

// MarkFailed transitions the task to failed with the given reason.
func (t *IngestTask) MarkFailed(reason string) {
	t.Status = TaskStatusFailed
	t.Error = reason
	t.UpdatedAt = time.Now()
}

// Exhausted reports whether the task has used up its delivery attempts.
func (t *IngestTask) Exhausted() bool {
	return t.Attempts >= t.MaxAttempts
}
