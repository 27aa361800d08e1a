package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/atenalab/quizrag/internal/corpus"
)

func newTestChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore("", "test_chunks")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestChromemStore_InsertAndSearch(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	chunks := []corpus.Chunk{
		{ID: "c1", Text: "La memoria centrale contiene dati e istruzioni.", Page: 3, Kind: corpus.KindText, Embedding: []float32{1, 0, 0}},
		{ID: "c2", Text: "Il processore esegue le istruzioni in sequenza.", Page: 4, Kind: corpus.KindText, Embedding: []float32{0, 1, 0}},
	}
	if err := store.Insert(ctx, chunks); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d (err %v)", count, err)
	}

	matches, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Chunk.ID != "c1" {
		t.Fatalf("expected c1 first, got %s", matches[0].Chunk.ID)
	}
	if matches[0].Chunk.Page != 3 || matches[0].Chunk.Kind != corpus.KindText {
		t.Fatalf("metadata not round-tripped: %+v", matches[0].Chunk)
	}
	if matches[0].Score <= matches[1].Score {
		t.Fatal("matches must come back in descending similarity order")
	}
}

func TestChromemStore_SearchClampsTopK(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	chunks := []corpus.Chunk{
		{ID: "c1", Text: "contenuto", Embedding: []float32{1, 0, 0}},
	}
	if err := store.Insert(ctx, chunks); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Asking for more results than stored chunks must not error.
	matches, err := store.Search(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
}

func TestChromemStore_SearchEmptyCollection(t *testing.T) {
	store := newTestChromemStore(t)

	matches, err := store.Search(context.Background(), []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("search on empty collection must not error, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
}

func TestChromemStore_InsertRejectsMissingEmbedding(t *testing.T) {
	store := newTestChromemStore(t)

	err := store.Insert(context.Background(), []corpus.Chunk{{ID: "c1", Text: "senza vettore"}})
	if !errors.Is(err, ErrMissingEmbedding) {
		t.Fatalf("expected ErrMissingEmbedding, got %v", err)
	}
}
