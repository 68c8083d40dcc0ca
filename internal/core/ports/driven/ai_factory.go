package driven

import (
	"github.com/arbor-labs/docqa-core/internal/core/domain"
)

// AIFactory creates AI services based on provider settings
type AIFactory interface {
	// EmbeddingService creates an embedding service from settings.
	// Returns nil, nil if settings are not configured.
	EmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// LLMService creates an LLM service from settings.
	// Returns nil, nil if settings are not configured.
	LLMService(settings *domain.LLMSettings) (LLMService, error)
}
