package corpus

import (
	"fmt"
	"strings"
)

// SplitConfig controls paragraph chunking of extracted document text.
type SplitConfig struct {
	// ChunkSize is the target chunk length in characters
	ChunkSize int

	// Overlap is the number of trailing characters carried into the next chunk
	Overlap int
}

// DefaultSplitConfig returns the chunking defaults used for course material.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkSize: 1000,
		Overlap:   200,
	}
}

// Page is a unit of extracted document text with its source page number.
type Page struct {
	Number int
	Text   string
}

// Split divides extracted pages into chunks by accumulating paragraphs up to
// the configured size. When a chunk closes, the tail sentences of the previous
// chunk are carried over as overlap so that concepts spanning a paragraph
// boundary stay retrievable.
func Split(pages []Page, cfg SplitConfig) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultSplitConfig()
	}

	var chunks []Chunk
	var current strings.Builder
	currentPage := 1
	chunkID := 0

	flush := func(page int) {
		text := strings.TrimSpace(current.String())
		if text == "" {
			return
		}
		chunks = append(chunks, Chunk{
			ID:   fmt.Sprintf("chunk_%d", chunkID),
			Text: text,
			Page: page,
			Kind: KindText,
		})
		chunkID++
	}

	for _, page := range pages {
		for _, para := range strings.Split(page.Text, "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}

			if current.Len() > 0 && current.Len()+len(para) > cfg.ChunkSize {
				prev := current.String()
				flush(currentPage)
				current.Reset()

				if tail := sentenceTail(prev, cfg.Overlap); tail != "" {
					current.WriteString(tail)
					current.WriteString(" ")
				}
			}

			if current.Len() > 0 {
				current.WriteString("\n\n")
			}
			current.WriteString(para)
			currentPage = page.Number
		}
	}

	flush(currentPage)
	return chunks
}

// sentenceTail returns the last sentences of text, capped at max characters.
func sentenceTail(text string, max int) string {
	if max <= 0 {
		return ""
	}
	sentences := strings.Split(text, ". ")
	if len(sentences) <= 2 {
		return ""
	}
	tail := strings.Join(sentences[len(sentences)-2:], ". ")
	if len(tail) > max {
		tail = tail[:max]
	}
	return tail
}
