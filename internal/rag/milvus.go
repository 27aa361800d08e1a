package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/atenalab/quizrag/internal/corpus"
)

// Common errors shared by the vector store implementations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
	ErrMissingEmbedding = errors.New("chunk has no embedding")
)

// MilvusConfig holds connection and collection settings for the hosted
// vector store.
type MilvusConfig struct {
	Address        string
	CollectionName string

	// Dimension must match the embedder; 1536 for text-embedding-3-small
	Dimension int

	// HNSW index parameters
	M              int
	EfConstruction int

	// SearchEf is the query-time ef parameter
	SearchEf int
}

// DefaultMilvusConfig reads MILVUS_ADDRESS and MILVUS_COLLECTION from the
// environment, with local defaults.
func DefaultMilvusConfig() MilvusConfig {
	cfg := MilvusConfig{
		Address:        os.Getenv("MILVUS_ADDRESS"),
		CollectionName: os.Getenv("MILVUS_COLLECTION"),
		Dimension:      1536,
		M:              16,
		EfConstruction: 256,
		SearchEf:       64,
	}
	if cfg.Address == "" {
		cfg.Address = "localhost:19530"
	}
	if cfg.CollectionName == "" {
		cfg.CollectionName = "quiz_course_chunks"
	}
	return cfg
}

// MilvusStore implements VectorStore over a Milvus collection of course
// chunks with cosine-similarity HNSW search.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore connects to Milvus and ensures the chunk collection exists
// with the expected schema and index.
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	s := &MilvusStore{client: c, config: config}
	if err := s.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := s.client.HasCollection(ctx, s.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if has {
		return nil
	}

	varchar := func(name, maxLen string) *entity.Field {
		return &entity.Field{
			Name:       name,
			DataType:   entity.FieldTypeVarChar,
			TypeParams: map[string]string{"max_length": maxLen},
		}
	}

	schema := &entity.Schema{
		CollectionName: s.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			varchar("chunk_id", "64"),
			varchar("text", "65535"),
			{
				Name:       "embedding",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": fmt.Sprintf("%d", s.config.Dimension)},
			},
			{
				Name:     "page",
				DataType: entity.FieldTypeInt64,
			},
			varchar("kind", "32"),
		},
	}

	if err := s.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, s.config.M, s.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}
	if err := s.client.CreateIndex(ctx, s.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	if err := s.client.LoadCollection(ctx, s.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// Insert adds chunk records with their embeddings and flushes the segment.
// Every chunk must carry an embedding of the configured dimension.
func (s *MilvusStore) Insert(ctx context.Context, chunks []corpus.Chunk) error {
	if len(chunks) == 0 {
		return ErrEmptyRecords
	}

	n := len(chunks)
	chunkIDs := make([]string, n)
	texts := make([]string, n)
	embeddings := make([][]float32, n)
	pages := make([]int64, n)
	kinds := make([]string, n)

	for i, ch := range chunks {
		if len(ch.Embedding) != s.config.Dimension {
			return fmt.Errorf("%w: chunk %q has dimension %d, want %d",
				ErrMissingEmbedding, ch.ID, len(ch.Embedding), s.config.Dimension)
		}
		chunkIDs[i] = ch.ID
		texts[i] = ch.Text
		embeddings[i] = ch.Embedding
		pages[i] = int64(ch.Page)
		kinds[i] = string(ch.Kind)
	}

	_, err := s.client.Insert(ctx, s.config.CollectionName, "",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", s.config.Dimension, embeddings),
		entity.NewColumnInt64("page", pages),
		entity.NewColumnVarChar("kind", kinds),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	if err := s.client.Flush(ctx, s.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search runs a top-K cosine similarity query and maps the hits back onto
// chunk records.
func (s *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int) ([]Match, error) {
	if len(queryVector) != s.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, s.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(s.config.SearchEf)
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	results, err := s.client.Search(
		ctx,
		s.config.CollectionName,
		nil,
		"",
		[]string{"chunk_id", "text", "page", "kind"},
		[]entity.Vector{entity.FloatVector(queryVector)},
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if len(results) == 0 {
		return []Match{}, nil
	}

	hits := results[0]
	matches := make([]Match, 0, hits.ResultCount)
	for i := 0; i < hits.ResultCount; i++ {
		match := Match{Score: float64(hits.Scores[i])}
		for _, field := range hits.Fields {
			switch field.Name() {
			case "chunk_id":
				match.Chunk.ID = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				match.Chunk.Text = field.(*entity.ColumnVarChar).Data()[i]
			case "page":
				match.Chunk.Page = int(field.(*entity.ColumnInt64).Data()[i])
			case "kind":
				match.Chunk.Kind = corpus.Kind(field.(*entity.ColumnVarChar).Data()[i])
			}
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// Count returns the number of stored chunks.
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.config.CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	var count int64
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
