package answer

import (
	"context"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses without network access.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// Responses, if set, are returned in order across calls, cycling at
	// the end. Takes precedence over Response.
	Responses []string

	// LastSystem and LastPrompt store the most recent inputs to Generate.
	LastSystem string
	LastPrompt string

	calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response.
func (m *MockLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.LastSystem = system
	m.LastPrompt = prompt
	m.calls++

	if m.Error != nil {
		return "", m.Error
	}
	if len(m.Responses) > 0 {
		return m.Responses[(m.calls-1)%len(m.Responses)], nil
	}
	return m.Response, nil
}

// Calls returns how many times Generate has been invoked.
func (m *MockLLM) Calls() int {
	return m.calls
}
