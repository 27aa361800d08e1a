package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY environment variable not set")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder turns text into fixed-dimension vectors. Implementations must
// return exactly one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// GetModel returns the embedding model identifier
	GetModel() string

	// GetDimension returns the embedding vector dimension
	GetDimension() int
}

// OpenAIEmbedder implements Embedder against the OpenAI embeddings API.
// Chunk corpora are embedded with text-embedding-3-small at dimension 1536;
// query vectors must use the same model and dimension or similarity scores
// are meaningless.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an embedder for the given model and dimension.
// The API key comes from the environment.
func NewOpenAIEmbedder(model string, dimension int) (*OpenAIEmbedder, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	return &OpenAIEmbedder{
		client:    openai.NewClient(option.WithAPIKey(key)),
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *OpenAIEmbedder) GetModel() string  { return e.model }
func (e *OpenAIEmbedder) GetDimension() int { return e.dimension }

// Embed requests one embedding per text in a single API call. The provider
// may return vectors out of order; they are reassembled by the response
// index field. A response with the wrong vector count is an error, not a
// partial result.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		Dimensions:     openai.Int(int64(e.dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if got := len(resp.Data); got != len(texts) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", ErrEmbeddingFailed, len(texts), got)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		v := make([]float32, len(item.Embedding))
		for j, x := range item.Embedding {
			v[j] = float32(x)
		}
		vectors[int(item.Index)] = v
	}

	return vectors, nil
}
