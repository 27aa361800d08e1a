package rag

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"

	"github.com/atenalab/quizrag/internal/corpus"
)

// ChromemStore implements VectorStore with an embedded chromem-go database,
// giving dense retrieval without a Milvus server. Useful for local runs and
// small corpora.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore creates an embedded vector store. An empty path keeps the
// database in memory; otherwise it persists under path.
func NewChromemStore(path, collectionName string) (*ChromemStore, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	collection, err := db.GetOrCreateCollection(collectionName, nil, func(_ context.Context, _ string) ([]float32, error) {
		return nil, fmt.Errorf("embeddings must be precomputed")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// Insert adds chunk records with precomputed embeddings.
func (s *ChromemStore) Insert(ctx context.Context, chunks []corpus.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyRecords
	}

	docs := make([]chromem.Document, len(chunks))
	for i, ch := range chunks {
		if len(ch.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %q", ErrMissingEmbedding, ch.ID)
		}
		docs[i] = chromem.Document{
			ID:        ch.ID,
			Content:   ch.Text,
			Embedding: ch.Embedding,
			Metadata: map[string]string{
				"page": strconv.Itoa(ch.Page),
				"kind": string(ch.Kind),
			},
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// Search performs top-K cosine similarity search.
func (s *ChromemStore) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	if len(queryVector) == 0 {
		return nil, ErrInvalidDimension
	}

	// chromem rejects nResults larger than the collection size.
	if count := s.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return []Match{}, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, queryVector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	matches := make([]Match, len(results))
	for i, res := range results {
		page, _ := strconv.Atoi(res.Metadata["page"])
		matches[i] = Match{
			Chunk: corpus.Chunk{
				ID:   res.ID,
				Text: res.Content,
				Page: page,
				Kind: corpus.Kind(res.Metadata["kind"]),
			},
			Score: float64(res.Similarity),
		}
	}
	return matches, nil
}

// Count returns the number of stored chunks.
func (s *ChromemStore) Count(ctx context.Context) (int64, error) {
	return int64(s.collection.Count()), nil
}

// Close is a no-op for the embedded store.
func (s *ChromemStore) Close() error {
	return nil
}
