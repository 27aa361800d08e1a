package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/atenalab/quizrag/internal/corpus"
)

// IndexOptions provides configuration for corpus indexing
type IndexOptions struct {
	// BatchSize determines how many chunks to embed per API call
	BatchSize int

	// BatchDelay is the pause between batches, purely to respect provider
	// rate limits
	BatchDelay time.Duration
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:  10,
		BatchDelay: 250 * time.Millisecond,
	}
}

// IndexCorpus embeds corpus chunks in batches and stores them in the vector
// store. This runs once during offline preprocessing; query-time code only
// reads the result.
func IndexCorpus(
	ctx context.Context,
	c *corpus.Corpus,
	embedder Embedder,
	store VectorStore,
	opts IndexOptions,
	log zerolog.Logger,
) error {
	if c == nil || c.Len() == 0 {
		return corpus.ErrCorpusEmpty
	}
	if embedder == nil {
		return fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return fmt.Errorf("vector store cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	chunks := c.Chunks()
	for batchStart := 0; batchStart < len(chunks); batchStart += opts.BatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Text
		}

		vectors, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed batch starting at %d: %w", batchStart, err)
		}

		records := make([]corpus.Chunk, len(batch))
		for i, ch := range batch {
			ch.Embedding = vectors[i]
			records[i] = ch
		}

		if err := store.Insert(ctx, records); err != nil {
			return fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}

		log.Info().
			Int("indexed", batchEnd).
			Int("total", len(chunks)).
			Msg("indexed chunk batch")

		if opts.BatchDelay > 0 && batchEnd < len(chunks) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.BatchDelay):
			}
		}
	}

	return nil
}
