package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven/mocks"
)

func seedCollection(t *testing.T, store *mocks.MockVectorStore, embedder *mocks.MockEmbeddingService, collection string, chunks ...domain.Chunk) {
	t.Helper()
	for _, chunk := range chunks {
		vec, err := embedder.EmbedQuery(context.Background(), chunk.Content)
		if err != nil {
			t.Fatalf("failed to embed seed chunk: %v", err)
		}
		err = store.Add(context.Background(), collection, []*domain.EmbeddingRecord{{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			Vector:   vec,
		}})
		if err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
}

func TestQueryService_Retrieve_SingleDocument(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "documents", 5, nil)

	seedCollection(t, store, embedder, "documents",
		domain.Chunk{Content: "only one chunk", Metadata: domain.ChunkMetadata{Filename: "a.txt"}})

	// k=5 against one stored chunk returns one result, not five
	retrieved, err := svc.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(retrieved) != 1 {
		t.Errorf("expected exactly 1 result, got %d", len(retrieved))
	}
}

func TestQueryService_Retrieve_EmptyCollection(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	store.CreateCollection("documents")
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "documents", 5, nil)

	retrieved, err := svc.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("empty collection must not error, got %v", err)
	}
	if len(retrieved) != 0 {
		t.Errorf("expected empty result, got %d", len(retrieved))
	}
}

func TestQueryService_Retrieve_UnknownCollection(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "never-written", 5, nil)

	_, err := svc.Retrieve(context.Background(), "anything", 5)
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestQueryService_Retrieve_DefaultK(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "documents", 2, nil)

	for i := 0; i < 4; i++ {
		seedCollection(t, store, embedder, "documents",
			domain.Chunk{Content: strings.Repeat("x", i+1), Metadata: domain.ChunkMetadata{Filename: "a.txt", ChunkIndex: i}})
	}

	retrieved, err := svc.Retrieve(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(retrieved) != 2 {
		t.Errorf("expected configured default k=2, got %d results", len(retrieved))
	}
}

func TestQueryService_Ask_SourcesAreDerivedFromRetrieval(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	llm := mocks.NewMockLLMService()
	// The model claims sources of its own; they must be ignored
	llm.Response = "The answer. Sources: invented.docx"
	svc := NewQueryService(embedder, store, llm, "documents", 5, nil)

	seedCollection(t, store, embedder, "documents",
		domain.Chunk{Content: "alpha", Metadata: domain.ChunkMetadata{Filename: "a.pdf", ChunkIndex: 0}},
		domain.Chunk{Content: "beta", Metadata: domain.ChunkMetadata{Filename: "a.pdf", ChunkIndex: 1}},
		domain.Chunk{Content: "gamma", Metadata: domain.ChunkMetadata{Filename: "a.pdf", ChunkIndex: 2}},
		domain.Chunk{Content: "delta", Metadata: domain.ChunkMetadata{Filename: "b.txt", ChunkIndex: 0}},
		domain.Chunk{Content: "epsilon", Metadata: domain.ChunkMetadata{Filename: "b.txt", ChunkIndex: 1}},
	)

	answer, err := svc.Ask(context.Background(), "what is alpha?", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.pdf", "b.txt"}
	if !reflect.DeepEqual(answer.Sources, want) {
		t.Errorf("expected sources %v, got %v", want, answer.Sources)
	}
	if len(answer.Chunks) != 5 {
		t.Errorf("expected 5 retrieved chunks, got %d", len(answer.Chunks))
	}
}

func TestQueryService_Ask_PromptGroundsEveryChunk(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	llm := mocks.NewMockLLMService()
	svc := NewQueryService(embedder, store, llm, "documents", 5, nil)

	seedCollection(t, store, embedder, "documents",
		domain.Chunk{Content: "the sky is blue", Metadata: domain.ChunkMetadata{Filename: "sky.txt"}})

	if _, err := svc.Ask(context.Background(), "what colour is the sky?", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(llm.Prompts) != 1 {
		t.Fatalf("expected 1 prompt, got %d", len(llm.Prompts))
	}
	prompt := llm.Prompts[0]
	if !strings.Contains(prompt, "[sky.txt]:") {
		t.Errorf("prompt missing filename label: %q", prompt)
	}
	if !strings.Contains(prompt, "the sky is blue") {
		t.Errorf("prompt missing chunk content: %q", prompt)
	}
	if !strings.Contains(prompt, "what colour is the sky?") {
		t.Errorf("prompt missing the question: %q", prompt)
	}
}

func TestQueryService_Ask_EmptyCollection(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	store.CreateCollection("documents")
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "documents", 5, nil)

	_, err := svc.Ask(context.Background(), "anything", 5)
	if !errors.Is(err, domain.ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestQueryService_Ask_LLMFailureHasNoFallback(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	store := mocks.NewMockVectorStore()
	llm := mocks.NewMockLLMService()
	llm.SetError(domain.ErrLLMUnavailable)
	svc := NewQueryService(embedder, store, llm, "documents", 5, nil)

	seedCollection(t, store, embedder, "documents",
		domain.Chunk{Content: "alpha", Metadata: domain.ChunkMetadata{Filename: "a.txt"}})

	answer, err := svc.Ask(context.Background(), "anything", 5)
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
	if answer != nil {
		t.Error("expected no fallback answer when the model is unavailable")
	}
}

func TestQueryService_Ask_EmbeddingFailurePropagates(t *testing.T) {
	embedder := mocks.NewMockEmbeddingService()
	embedder.SetError(domain.ErrEmbeddingUnavailable)
	store := mocks.NewMockVectorStore()
	svc := NewQueryService(embedder, store, mocks.NewMockLLMService(), "documents", 5, nil)

	_, err := svc.Ask(context.Background(), "anything", 5)
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}
