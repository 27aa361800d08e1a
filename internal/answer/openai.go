package answer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// rate-limit backoff parameters: 2s * 2^attempt, capped
const (
	backoffBase = 2 * time.Second
	backoffCap  = 15 * time.Second
)

// OpenAILLM implements the LLM interface using OpenAI's API.
type OpenAILLM struct {
	client openai.Client
	config LLMConfig
}

// NewOpenAILLM creates an OpenAI-backed LLM implementation.
// Returns an error if the API key is missing or invalid.
func NewOpenAILLM(config LLMConfig) (*OpenAILLM, error) {
	// Use config API key or fall back to environment variable
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API key (set OPENAI_API_KEY or provide in config)", ErrInvalidConfig)
	}
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		// Backoff is handled here so it stays visible and bounded.
		option.WithMaxRetries(0),
	)

	return &OpenAILLM{
		client: client,
		config: config,
	}, nil
}

// Generate sends the prompt to OpenAI and returns the generated text.
// Rate-limit responses are retried with exponential backoff up to the
// configured attempt count; on exhaustion the error is returned for the
// caller's fallback ladder to handle.
func (o *OpenAILLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.config.Model),
		Messages:    messages,
		Temperature: openai.Float(float64(o.config.Temperature)),
	}
	if o.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.config.MaxTokens))
	}

	var lastErr error
	attempts := o.config.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := backoffBase << (attempt - 1)
			if wait > backoffCap {
				wait = backoffCap
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrLLMFailed, ctx.Err())
			case <-time.After(wait):
			}
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if o.config.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, o.config.Timeout)
		}
		completion, err := o.client.Chat.Completions.New(callCtx, params)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			lastErr = err
			if isRateLimited(err) {
				continue
			}
			return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
		}

		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("%w: no response generated", ErrLLMFailed)
		}
		return completion.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: retries exhausted: %w", ErrLLMFailed, lastErr)
}

// isRateLimited reports whether the error is an HTTP 429 from the provider.
func isRateLimited(err error) bool {
	var apiErr *openai.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
