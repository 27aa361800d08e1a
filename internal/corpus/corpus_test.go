package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_EmptyCorpus(t *testing.T) {
	if _, err := New(nil); err != ErrCorpusEmpty {
		t.Fatalf("expected ErrCorpusEmpty, got %v", err)
	}
}

func TestNew_RejectsMalformedChunks(t *testing.T) {
	cases := []Chunk{
		{ID: "c1", Text: "   "},
		{ID: "c2", Text: "ok", Page: -1},
		{ID: "c3", Text: "ok", Kind: "hologram"},
	}

	for _, ch := range cases {
		if _, err := New([]Chunk{ch}); !errors.Is(err, ErrInvalidChunk) {
			t.Fatalf("chunk %+v: expected ErrInvalidChunk, got %v", ch, err)
		}
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	chunks := []Chunk{
		{ID: "c1", Text: "primo", Page: 1},
		{ID: "c1", Text: "secondo", Page: 2},
	}

	if _, err := New(chunks); !errors.Is(err, ErrInvalidChunk) {
		t.Fatalf("expected ErrInvalidChunk for duplicate id, got %v", err)
	}
}

func TestNew_AssignsDefaults(t *testing.T) {
	c, err := New([]Chunk{{Text: "testo senza id", Page: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ch := c.Chunks()[0]
	if ch.ID == "" {
		t.Fatal("expected generated id")
	}
	if ch.Kind != KindText {
		t.Fatalf("expected default kind text, got %q", ch.Kind)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")
	data := `[
	  {"id": "chunk_0", "text": "Il primo capitolo introduce le basi.", "page": 1, "type": "text"},
	  {"id": "chunk_1", "text": "Tabella dei simboli.", "page": 2, "type": "table"}
	]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 chunks, got %d", c.Len())
	}

	ch, ok := c.Get("chunk_1")
	if !ok || ch.Kind != KindTable {
		t.Fatalf("lookup failed: %v %v", ch, ok)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrCorpusEmpty) {
		t.Fatalf("expected ErrCorpusEmpty, got %v", err)
	}
}
