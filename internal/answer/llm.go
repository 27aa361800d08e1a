// Package answer turns retrieved context into a single letter answer per
// quiz question. It defines a provider-agnostic LLM interface with a
// concrete OpenAI implementation and deterministic mocks for testing, plus
// the fallback ladder that guarantees an answer even when the model or the
// network misbehaves.
package answer

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a system instruction and a user prompt.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// LLMConfig holds common configuration options for LLM providers.
type LLMConfig struct {
	// Model specifies the model identifier (e.g., "gpt-4o-mini")
	Model string

	// Temperature controls randomness; answer selection wants it low
	Temperature float32

	// MaxTokens limits the response length; one letter needs very few
	MaxTokens int

	// Timeout bounds each request so a hung call cannot block the batch
	Timeout time.Duration

	// MaxRetries bounds retry attempts on rate-limit responses
	MaxRetries int

	// APIKey is the authentication key for the provider
	APIKey string
}

// DefaultLLMConfig returns sensible defaults for answer selection.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   10,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
	}
}
