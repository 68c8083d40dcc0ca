package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arbor-labs/docqa-core/internal/chunker"
	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driving"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// ingestService implements the write path: extract, chunk, embed, store.
type ingestService struct {
	extractor  driven.Extractor
	splitter   *chunker.Splitter
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	collection string
	logger     *slog.Logger
}

// NewIngestService creates a new IngestService writing into collection
// unless a call names another one.
func NewIngestService(
	extractor driven.Extractor,
	splitter *chunker.Splitter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	collection string,
	logger *slog.Logger,
) driving.IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		extractor:  extractor,
		splitter:   splitter,
		embedder:   embedder,
		store:      store,
		collection: collection,
		logger:     logger,
	}
}

// IngestFile runs the full write pipeline for one file. Chunks are
// embedded and stored one at a time so a failure identifies the exact
// chunk and a cancellation between chunks leaves no corrupt state.
// Already-stored chunks stay stored; the report counts them.
func (s *ingestService) IngestFile(ctx context.Context, collection, filename string, data []byte) (*domain.IngestReport, error) {
	if collection == "" {
		collection = s.collection
	}

	fragments, err := s.extractor.Extract(filename, data)
	if err != nil {
		s.logger.Error("extraction failed", "filename", filename, "error", err)
		return nil, err
	}

	chunks := s.assemble(filename, fragments)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoContent, filename)
	}

	report := &domain.IngestReport{Filename: filename, Chunks: len(chunks)}
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("ingestion aborted",
				"filename", filename,
				"chunk_index", chunk.Metadata.ChunkIndex,
				"stored", report.Stored,
			)
			return report, err
		}

		vectors, err := s.embedder.Embed(ctx, []string{chunk.Content})
		if err != nil {
			s.logger.Error("embedding failed",
				"filename", filename,
				"chunk_index", chunk.Metadata.ChunkIndex,
				"collection", collection,
				"error", err,
			)
			return report, err
		}

		record := &domain.EmbeddingRecord{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Vector:   vectors[0],
		}
		if err := s.store.Add(ctx, collection, []*domain.EmbeddingRecord{record}); err != nil {
			s.logger.Error("store write failed",
				"filename", filename,
				"chunk_index", chunk.Metadata.ChunkIndex,
				"collection", collection,
				"error", err,
			)
			return report, err
		}
		report.Stored++
	}

	s.logger.Info("file ingested",
		"filename", filename,
		"collection", collection,
		"chunks", report.Stored,
	)
	return report, nil
}

// assemble splits every fragment and attaches provenance metadata.
// ChunkIndex is 0-based over the whole file, assigned before anything
// else may reorder work.
func (s *ingestService) assemble(filename string, fragments []domain.Fragment) []domain.Chunk {
	var chunks []domain.Chunk
	index := 0
	for _, fragment := range fragments {
		for _, text := range s.splitter.Split(fragment.Text) {
			chunks = append(chunks, domain.Chunk{
				Content: text,
				Metadata: domain.ChunkMetadata{
					Filename:   filename,
					Page:       fragment.Page,
					Row:        fragment.Row,
					ChunkIndex: index,
				},
			})
			index++
		}
	}
	return chunks
}
