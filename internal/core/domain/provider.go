package domain

import "time"

// AIProvider identifies an external embedding/LLM provider
type AIProvider string

const (
	// AIProviderOllama uses a local or remote Ollama server
	AIProviderOllama AIProvider = "ollama"
	// AIProviderOpenAI uses the OpenAI API (or a compatible endpoint)
	AIProviderOpenAI AIProvider = "openai"
)

// EmbeddingSettings configures the embedding provider. The same model
// must serve ingestion and querying; vectors from different models are
// not comparable.
type EmbeddingSettings struct {
	Provider AIProvider    `json:"provider"`
	Model    string        `json:"model"`
	BaseURL  string        `json:"base_url,omitempty"`
	APIKey   string        `json:"-"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// IsConfigured reports whether the settings name a provider at all
func (s *EmbeddingSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// LLMSettings configures the answer-generation provider
type LLMSettings struct {
	Provider AIProvider    `json:"provider"`
	Model    string        `json:"model"`
	BaseURL  string        `json:"base_url,omitempty"`
	APIKey   string        `json:"-"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// IsConfigured reports whether the settings name a provider at all
func (s *LLMSettings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}
