// Package ai provides embedding and LLM service implementations for
// the supported providers.
package ai

import (
	"fmt"

	"github.com/arbor-labs/docqa-core/internal/core/domain"
	"github.com/arbor-labs/docqa-core/internal/core/ports/driven"
)

// Ensure Factory implements AIFactory
var _ driven.AIFactory = (*Factory)(nil)

// Factory creates embedding and LLM services from provider settings
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// EmbeddingService creates an embedding service from the given settings.
// Returns (nil, nil) when the settings are absent or unconfigured, so
// callers can treat the capability as disabled.
func (f *Factory) EmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return NewOllamaEmbedding(settings.BaseURL, settings.Model, settings.Timeout)
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL, settings.Timeout)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidProvider, settings.Provider)
	}
}

// LLMService creates an LLM service from the given settings.
// Returns (nil, nil) when the settings are absent or unconfigured.
func (f *Factory) LLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return NewOllamaLLM(settings.BaseURL, settings.Model, settings.Timeout)
	case domain.AIProviderOpenAI:
		return NewOpenAILLM(settings.APIKey, settings.Model, settings.BaseURL, settings.Timeout)
	default:
		return nil, fmt.Errorf("%w: unknown LLM provider %q", domain.ErrInvalidProvider, settings.Provider)
	}
}
