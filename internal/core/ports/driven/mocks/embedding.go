package mocks

import (
	"context"
	"hash/fnv"
)

// MockEmbeddingService is a mock implementation of EmbeddingService for testing.
// Vectors are deterministic functions of the input text so that equal
// texts always land on equal vectors.
type MockEmbeddingService struct {
	dimensions int
	model      string
	err        error

	// EmbedCalls records every text embedded, in order
	EmbedCalls []string

	// FailAfter delays the configured error until that many texts have
	// been embedded successfully (0 means fail immediately)
	FailAfter int
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 8,
		model:      "mock-embedding-model",
	}
}

// SetError makes every subsequent call fail with err
func (m *MockEmbeddingService) SetError(err error) {
	m.err = err
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if m.err != nil && len(m.EmbedCalls) >= m.FailAfter {
			return nil, m.err
		}
		m.EmbedCalls = append(m.EmbedCalls, text)
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.err != nil && len(m.EmbedCalls) >= m.FailAfter {
		return nil, m.err
	}
	m.EmbedCalls = append(m.EmbedCalls, query)
	return m.generateEmbedding(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return m.err
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// generateEmbedding produces a deterministic pseudo-embedding from text
func (m *MockEmbeddingService) generateEmbedding(text string) []float32 {
	vec := make([]float32, m.dimensions)
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte{byte(i)})
		h.Write([]byte(text))
		vec[i] = float32(h.Sum32()%1000)/1000.0 - 0.5
	}
	return vec
}
