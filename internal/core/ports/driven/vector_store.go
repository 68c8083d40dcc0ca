package driven

import (
	"context"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// VectorStore persists embedding records inside named collections and
// answers nearest-neighbour queries over them.
//
// Collections are logical namespaces created on first write. Writes
// append; there is no dedup or versioning. A record's vector and
// metadata commit together.
type VectorStore interface {
	// EnsureSchema idempotently prepares the backing store for vector
	// operations. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// Add appends records to the collection, creating it if needed.
	Add(ctx context.Context, collection string, records []*domain.EmbeddingRecord) error

	// Search returns the k stored chunks most similar to the vector,
	// ordered by descending similarity, ties broken by insertion order.
	// An empty collection yields an empty slice; a collection that has
	// never been written to yields domain.ErrCollectionNotFound.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Close releases the underlying connections
	Close() error
}
