package mocks

import (
	"context"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	// Response is returned by every Complete call
	Response string

	// Prompts records every prompt passed to Complete, in order
	Prompts []string

	err error
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		Response: "mock answer",
	}
}

// SetError makes every subsequent call fail with err
func (m *MockLLMService) SetError(err error) {
	m.err = err
}

func (m *MockLLMService) Complete(ctx context.Context, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.Prompts = append(m.Prompts, prompt)
	return m.Response, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return m.err
}

func (m *MockLLMService) Close() error {
	return nil
}
