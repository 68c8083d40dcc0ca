package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
)

//go:embed schema.sql
var schema string

// Verify interface compliance
var _ driven.VectorStore = (*EmbeddingStore)(nil)

// EmbeddingStore implements driven.VectorStore on PostgreSQL with the
// pgvector extension. Collections are rows in the collections table,
// created on first write; records append under them.
type EmbeddingStore struct {
	db *DB
}

// NewEmbeddingStore creates a new EmbeddingStore
func NewEmbeddingStore(db *DB) *EmbeddingStore {
	return &EmbeddingStore{db: db}
}

// EnsureSchema idempotently creates the vector extension and tables.
func (s *EmbeddingStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSchemaSetup, err)
	}
	return nil
}

// Add appends records to the collection, creating the collection row if
// needed. Each record's vector and metadata commit in one insert, so a
// reader never observes a half-written record.
func (s *EmbeddingStore) Add(ctx context.Context, collection string, records []*domain.EmbeddingRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		collectionID, err := ensureCollection(ctx, tx, collection)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO embedding_records (collection_id, content, metadata, embedding)
			VALUES ($1, $2, $3, $4)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rec := range records {
			metadata, err := json.Marshal(rec.Metadata)
			if err != nil {
				return err
			}
			_, err = stmt.ExecContext(ctx,
				collectionID,
				rec.Content,
				metadata,
				pgvector.NewVector(rec.Vector),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: collection %q: %v", domain.ErrPersistence, collection, err)
	}
	return nil
}

// Search returns the k nearest records by cosine distance, closest
// first, ties broken by insertion order (lowest id wins).
func (s *EmbeddingStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	var collectionID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM collections WHERE name = $1`, collection,
	).Scan(&collectionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", domain.ErrCollectionNotFound, collection)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	query := `
		SELECT content, metadata, 1 - (embedding <=> $2) AS similarity
		FROM embedding_records
		WHERE collection_id = $1
		ORDER BY embedding <=> $2 ASC, id ASC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, collectionID, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var (
			content  string
			metadata []byte
			score    float64
		)
		if err := rows.Scan(&content, &metadata, &score); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}

		var meta domain.ChunkMetadata
		if err := json.Unmarshal(metadata, &meta); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}

		results = append(results, domain.RetrievedChunk{
			Chunk: domain.Chunk{Content: content, Metadata: meta},
			Score: score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return results, nil
}

// Close closes the underlying connection pool.
func (s *EmbeddingStore) Close() error {
	return s.db.Close()
}

// ensureCollection returns the id of the named collection, inserting the
// row if this is the first write.
func ensureCollection(ctx context.Context, tx *sql.Tx, name string) (string, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO collections (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), name,
	)
	if err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM collections WHERE name = $1`, name,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
