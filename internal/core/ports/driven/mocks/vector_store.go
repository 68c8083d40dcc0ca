package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// MockVectorStore is an in-memory mock implementation of VectorStore
type MockVectorStore struct {
	mu          sync.RWMutex
	collections map[string][]*domain.EmbeddingRecord
	nextID      int64
	err         error
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		collections: make(map[string][]*domain.EmbeddingRecord),
	}
}

// SetError makes every subsequent call fail with err
func (m *MockVectorStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// CreateCollection registers an empty collection, mirroring a collection
// that exists but holds no records
func (m *MockVectorStore) CreateCollection(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		m.collections[name] = nil
	}
}

// Records returns the stored records of a collection, in insertion order
func (m *MockVectorStore) Records(collection string) []*domain.EmbeddingRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collections[collection]
}

func (m *MockVectorStore) EnsureSchema(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *MockVectorStore) Add(ctx context.Context, collection string, records []*domain.EmbeddingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	for _, rec := range records {
		m.nextID++
		stored := *rec
		stored.ID = m.nextID
		stored.Collection = collection
		m.collections[collection] = append(m.collections[collection], &stored)
	}
	return nil
}

func (m *MockVectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	records, ok := m.collections[collection]
	if !ok {
		return nil, domain.ErrCollectionNotFound
	}

	results := make([]domain.RetrievedChunk, 0, len(records))
	for _, rec := range records {
		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{
				Content:  rec.Content,
				Metadata: rec.Metadata,
			},
			Score: cosineSimilarity(vector, rec.Vector),
		})
	}

	// Stable sort keeps insertion order for equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (m *MockVectorStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
