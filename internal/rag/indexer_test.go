package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/atenalab/quizrag/internal/corpus"
)

func TestIndexCorpus_BatchesAndAttachesEmbeddings(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "contenuto del capitolo numero uno del corso"
	}
	c := testCorpus(t, texts...)

	var batchSizes []int
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, in []string) ([][]float32, error) {
			batchSizes = append(batchSizes, len(in))
			vectors := make([][]float32, len(in))
			for i := range in {
				vectors[i] = []float32{1, 2, 3}
			}
			return vectors, nil
		},
	}
	store := &mockVectorStore{}

	opts := IndexOptions{BatchSize: 10}
	if err := IndexCorpus(context.Background(), c, embedder, store, opts, zerolog.Nop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batchSizes) != 3 || batchSizes[0] != 10 || batchSizes[2] != 5 {
		t.Fatalf("unexpected batching: %v", batchSizes)
	}
	if len(store.inserted) != 25 {
		t.Fatalf("expected 25 inserted chunks, got %d", len(store.inserted))
	}
	for _, ch := range store.inserted {
		if len(ch.Embedding) != 3 {
			t.Fatalf("chunk %s missing embedding", ch.ID)
		}
	}
}

func TestIndexCorpus_EmbedFailureAborts(t *testing.T) {
	c := testCorpus(t, "unico contenuto del corso da indicizzare")

	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, in []string) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		},
	}

	err := IndexCorpus(context.Background(), c, embedder, &mockVectorStore{}, DefaultIndexOptions(), zerolog.Nop())
	if err == nil {
		t.Fatal("expected indexing to fail when embedding fails")
	}
}

func TestIndexCorpus_EmptyCorpus(t *testing.T) {
	err := IndexCorpus(context.Background(), nil, &mockEmbedder{}, &mockVectorStore{}, DefaultIndexOptions(), zerolog.Nop())
	if !errors.Is(err, corpus.ErrCorpusEmpty) {
		t.Fatalf("expected ErrCorpusEmpty, got %v", err)
	}
}
