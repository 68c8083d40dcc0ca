package mocks

import (
	"context"
	"sync"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// MockTaskQueue is an in-memory mock implementation of TaskQueue
type MockTaskQueue struct {
	mu      sync.Mutex
	pending []*domain.IngestTask
	byID    map[string]*domain.IngestTask

	// Acked and Nacked record the task IDs acknowledged and rejected
	Acked  []string
	Nacked []string
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{
		byID: make(map[string]*domain.IngestTask),
	}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.IngestTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, task)
	m.byID[task.ID] = task
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.IngestTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, nil
	}
	task := m.pending[0]
	m.pending = m.pending[1:]
	task.MarkProcessing()
	return task, nil
}

func (m *MockTaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Acked = append(m.Acked, taskID)
	if task, ok := m.byID[taskID]; ok {
		task.MarkCompleted()
	}
	return nil
}

func (m *MockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Nacked = append(m.Nacked, taskID)
	task, ok := m.byID[taskID]
	if !ok {
		return nil
	}
	if task.Exhausted() {
		task.MarkFailed(reason)
		return nil
	}
	task.Status = domain.TaskStatusPending
	m.pending = append(m.pending, task)
	return nil
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockTaskQueue) Close() error {
	return nil
}

// Len returns the number of pending tasks
func (m *MockTaskQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
