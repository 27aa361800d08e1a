package corpus

import (
	"strings"
	"testing"
)

func TestSplit_RespectsChunkSize(t *testing.T) {
	cfg := SplitConfig{ChunkSize: 200, Overlap: 50}

	paragraphs := make([]string, 10)
	for i := range paragraphs {
		paragraphs[i] = strings.Repeat("frase di prova. ", 6)
	}
	pages := []Page{{Number: 1, Text: strings.Join(paragraphs, "\n\n")}}

	chunks := Split(pages, cfg)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		// A single paragraph may exceed the target; accumulated chunks
		// should stay near it.
		if len(ch.Text) > cfg.ChunkSize+150 {
			t.Fatalf("chunk %s is %d chars, far over target %d", ch.ID, len(ch.Text), cfg.ChunkSize)
		}
	}
}

func TestSplit_CarriesOverlap(t *testing.T) {
	cfg := SplitConfig{ChunkSize: 120, Overlap: 60}
	text := "Prima frase del discorso. Seconda frase importante. Terza frase conclusiva.\n\n" +
		"Nuovo paragrafo che parla di un altro argomento del tutto diverso e più lungo."
	pages := []Page{{Number: 1, Text: text}}

	chunks := Split(pages, cfg)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	// The second chunk starts with the tail sentences of the first.
	if !strings.Contains(chunks[1].Text, "Terza frase conclusiva") {
		t.Fatalf("overlap missing from second chunk: %q", chunks[1].Text)
	}
}

func TestSplit_TracksPages(t *testing.T) {
	pages := []Page{
		{Number: 1, Text: "Contenuto della prima pagina."},
		{Number: 7, Text: "Contenuto della settima pagina."},
	}

	chunks := Split(pages, SplitConfig{ChunkSize: 40, Overlap: 0})

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].Page != 7 {
		t.Fatalf("expected page 7 on second chunk, got %d", chunks[1].Page)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	if chunks := Split(nil, DefaultSplitConfig()); len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}
