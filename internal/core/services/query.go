package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driving"
)

// Ensure queryService implements QueryService
var _ driving.QueryService = (*queryService)(nil)

// queryService implements the read path: embed the query, retrieve the
// most similar chunks, synthesize a grounded answer.
type queryService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	llm        driven.LLMService
	collection string
	defaultK   int
	logger     *slog.Logger
}

// NewQueryService creates a new QueryService reading from collection.
// The embedder must be the same model used at ingestion time.
func NewQueryService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	llm driven.LLMService,
	collection string,
	defaultK int,
	logger *slog.Logger,
) driving.QueryService {
	if defaultK <= 0 {
		defaultK = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &queryService{
		embedder:   embedder,
		store:      store,
		llm:        llm,
		collection: collection,
		defaultK:   defaultK,
		logger:     logger,
	}
}

// Retrieve embeds the question and returns the k nearest stored chunks.
func (s *queryService) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = s.defaultK
	}

	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		s.logger.Error("query embedding failed", "collection", s.collection, "error", err)
		return nil, err
	}

	retrieved, err := s.store.Search(ctx, s.collection, vector, k)
	if err != nil {
		s.logger.Error("retrieval failed", "collection", s.collection, "error", err)
		return nil, err
	}
	return retrieved, nil
}

// Ask answers the question from retrieved context only. No fallback
// answer is synthesized when the model is unavailable.
func (s *queryService) Ask(ctx context.Context, question string, k int) (*domain.Answer, error) {
	retrieved, err := s.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	if len(retrieved) == 0 {
		return nil, fmt.Errorf("%w: collection %q holds nothing to ground an answer on", domain.ErrNoContent, s.collection)
	}

	answer, err := s.synthesize(ctx, question, retrieved)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// synthesize builds the grounding prompt, asks the model, and derives
// the source list from retrieval metadata. The model never decides what
// counts as a source.
func (s *queryService) synthesize(ctx context.Context, question string, retrieved []domain.RetrievedChunk) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: no llm provider configured", domain.ErrLLMUnavailable)
	}

	prompt := buildPrompt(question, retrieved)

	text, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Error("answer synthesis failed", "collection", s.collection, "error", err)
		return nil, err
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: domain.SourcesOf(retrieved),
		Chunks:  retrieved,
	}, nil
}

// buildPrompt labels every chunk with its source filename so the model
// can cite context without guessing.
func buildPrompt(question string, retrieved []domain.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("Answer the question concisely and accurately using only the context below. ")
	b.WriteString("If the context does not contain the answer, say that the provided documents are insufficient.\n\nContext:\n")
	for _, rc := range retrieved {
		fmt.Fprintf(&b, "[%s]:\n%s\n\n", rc.Chunk.Metadata.Filename, rc.Chunk.Content)
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer:", question)
	return b.String()
}
