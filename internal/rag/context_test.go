package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/atenalab/quizrag/internal/corpus"
)

func TestAssemble_RespectsBudget(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.MaxChars = 120
	cfg.SentencesPerChunk = 0
	assembler := NewAssembler(nil, cfg)

	long := strings.Repeat("testo del corso ", 20)
	result := Result{Matches: []Match{
		{Chunk: corpus.Chunk{ID: "c1", Text: long}, Score: 90},
		{Chunk: corpus.Chunk{ID: "c2", Text: long}, Score: 80},
	}}

	context := assembler.Assemble(result, nil, nil)

	if len(context) > cfg.MaxChars {
		t.Fatalf("context length %d exceeds budget %d", len(context), cfg.MaxChars)
	}
	if context == "" {
		t.Fatal("first chunk must still contribute under a tight budget")
	}
}

func TestAssemble_TruncatesAtChunkJoin(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.MaxChars = 100
	cfg.SentencesPerChunk = 0
	assembler := NewAssembler(nil, cfg)

	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	result := Result{Matches: []Match{
		{Chunk: corpus.Chunk{ID: "c1", Text: first}, Score: 90},
		{Chunk: corpus.Chunk{ID: "c2", Text: second}, Score: 80},
	}}

	context := assembler.Assemble(result, nil, nil)

	// The second chunk does not fit: it is dropped whole, not cut.
	if context != first {
		t.Fatalf("expected only the first chunk, got %q", context)
	}
}

func TestAssemble_TruncationPreservesUTF8(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.MaxChars = 51 // lands mid-rune in two-byte accented text
	cfg.SentencesPerChunk = 0
	assembler := NewAssembler(nil, cfg)

	accented := strings.Repeat("è", 100)
	result := Result{Matches: []Match{
		{Chunk: corpus.Chunk{ID: "c1", Text: accented}, Score: 90},
	}}

	context := assembler.Assemble(result, nil, nil)

	if len(context) > cfg.MaxChars {
		t.Fatalf("context length %d exceeds budget %d", len(context), cfg.MaxChars)
	}
	if !utf8.ValidString(context) {
		t.Fatal("truncation split a multi-byte rune")
	}
	if context == "" {
		t.Fatal("truncated chunk must still contribute")
	}
}

func TestAssemble_EmptyResult(t *testing.T) {
	assembler := NewAssembler(nil, DefaultAssemblerConfig())

	if context := assembler.Assemble(Result{}, nil, nil); context != "" {
		t.Fatalf("expected empty context, got %q", context)
	}
}

func TestAssemble_SentenceTrimmingKeepsRelevantSentences(t *testing.T) {
	c := testCorpus(t,
		"La memoria centrale conserva i dati durante l'esecuzione. Il clima mediterraneo è mite d'inverno. Le cache riducono i tempi di accesso alla memoria.",
	)
	index, err := BuildIndex(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assembler := NewAssembler(index, DefaultAssemblerConfig())
	result := Result{Matches: []Match{{Chunk: c.Chunks()[0], Score: 90}}}

	context := assembler.Assemble(result, []string{"memoria", "cache"}, nil)

	if !strings.Contains(context, "memoria centrale") {
		t.Fatalf("keyword sentence dropped: %q", context)
	}
	if strings.Contains(context, "clima mediterraneo") {
		t.Fatalf("irrelevant sentence kept: %q", context)
	}
}

func TestAssemble_CapsChunkCount(t *testing.T) {
	cfg := DefaultAssemblerConfig()
	cfg.MaxChunks = 1
	cfg.SentencesPerChunk = 0
	assembler := NewAssembler(nil, cfg)

	result := Result{Matches: []Match{
		{Chunk: corpus.Chunk{ID: "c1", Text: "primo"}, Score: 90},
		{Chunk: corpus.Chunk{ID: "c2", Text: "secondo"}, Score: 80},
	}}

	context := assembler.Assemble(result, nil, nil)

	if strings.Contains(context, "secondo") {
		t.Fatalf("chunk beyond MaxChunks included: %q", context)
	}
}
