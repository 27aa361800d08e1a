package rag

import (
	"context"
	"errors"

	"github.com/atenalab/quizrag/internal/corpus"
)

// Common errors for retrieval operations
var (
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")
	ErrEmptyQuery           = errors.New("empty retrieval query")
)

// Match pairs a chunk with its strategy-relative relevance score.
// Lexical scores are unbounded additive weights; dense scores are cosine
// similarities. Scores from different strategies must never be compared.
type Match struct {
	Chunk corpus.Chunk
	Score float64
}

// Result is the ranked evidence retrieved for one question.
type Result struct {
	// Matches is ordered descending by score; may be empty.
	Matches []Match

	// InferredFromContext is true when the matches were borrowed from a
	// neighboring question in the same batch.
	InferredFromContext bool
}

// Empty reports whether retrieval produced no usable evidence.
func (r Result) Empty() bool {
	return len(r.Matches) == 0
}

// VectorStore defines the interface for dense vector storage and
// similarity search over chunk embeddings.
type VectorStore interface {
	// Insert adds chunk records with embeddings in a single operation
	Insert(ctx context.Context, chunks []corpus.Chunk) error

	// Search performs top-K cosine similarity search
	Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error)

	// Count returns the number of stored chunks
	Count(ctx context.Context) (int64, error)

	// Close releases resources and closes connections
	Close() error
}
