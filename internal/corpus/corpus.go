// Package corpus defines the retrievable chunk model and loads chunk corpora
// produced by offline preprocessing. Chunks are immutable after load: query-time
// code never mutates them, so a loaded corpus is safe for concurrent readers.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common errors for corpus loading and validation
var (
	ErrCorpusEmpty  = errors.New("corpus contains no chunks")
	ErrInvalidChunk = errors.New("invalid chunk record")
)

// Kind classifies where a chunk's text came from.
type Kind string

const (
	KindText   Kind = "text"
	KindTable  Kind = "table"
	KindVision Kind = "vision-enhanced"
)

// Chunk is a single retrievable unit of source-document text.
// Embedding is only populated when the corpus was built for dense retrieval.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Page      int       `json:"page"`
	Kind      Kind      `json:"type,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate checks the invariants required at the ingestion boundary.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: empty text (id %q)", ErrInvalidChunk, c.ID)
	}
	if c.Page < 0 {
		return fmt.Errorf("%w: negative page %d (id %q)", ErrInvalidChunk, c.Page, c.ID)
	}
	switch c.Kind {
	case "", KindText, KindTable, KindVision:
	default:
		return fmt.Errorf("%w: unknown type %q (id %q)", ErrInvalidChunk, c.Kind, c.ID)
	}
	return nil
}

// Corpus is an immutable set of chunks loaded once at process start.
type Corpus struct {
	chunks []Chunk
	byID   map[string]int
}

// New builds a corpus from validated chunk records.
// Malformed records are rejected rather than silently dropped; an empty
// input is a configuration problem and returns ErrCorpusEmpty.
func New(chunks []Chunk) (*Corpus, error) {
	if len(chunks) == 0 {
		return nil, ErrCorpusEmpty
	}

	byID := make(map[string]int, len(chunks))
	out := make([]Chunk, 0, len(chunks))
	for i, ch := range chunks {
		if ch.ID == "" {
			ch.ID = fmt.Sprintf("chunk_%d", i)
		}
		if ch.Kind == "" {
			ch.Kind = KindText
		}
		if err := ch.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[ch.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidChunk, ch.ID)
		}
		byID[ch.ID] = len(out)
		out = append(out, ch)
	}

	return &Corpus{chunks: out, byID: byID}, nil
}

// Load reads a chunks JSON file written by the index command.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file %s: %w", path, err)
	}

	return New(chunks)
}

// Len returns the number of chunks in the corpus.
func (c *Corpus) Len() int {
	return len(c.chunks)
}

// Chunks returns the underlying chunk slice. Callers must treat it as read-only.
func (c *Corpus) Chunks() []Chunk {
	return c.chunks
}

// Get looks up a chunk by id.
func (c *Corpus) Get(id string) (Chunk, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Chunk{}, false
	}
	return c.chunks[i], true
}
