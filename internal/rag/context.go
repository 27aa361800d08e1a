package rag

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// AssemblerConfig bounds the context string handed to answer selection.
type AssemblerConfig struct {
	// MaxChars is the hard character budget for the assembled context
	MaxChars int `yaml:"max_chars"`

	// MaxChunks caps how many top-ranked chunks contribute
	MaxChunks int `yaml:"max_chunks"`

	// SentencesPerChunk keeps only the best-scoring sentences of each chunk.
	// Zero disables sentence-level trimming and concatenates whole chunks.
	SentencesPerChunk int `yaml:"sentences_per_chunk"`

	// KeywordSentenceBonus is added to a sentence containing a question
	// keyword or near-verbatim option text
	KeywordSentenceBonus float64 `yaml:"keyword_sentence_bonus"`
}

// DefaultAssemblerConfig returns the context budget defaults.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		MaxChars:             2000,
		MaxChunks:            3,
		SentencesPerChunk:    2,
		KeywordSentenceBonus: 100,
	}
}

// Assembler reduces ranked matches into a single bounded context string.
type Assembler struct {
	index  *Index
	config AssemblerConfig
}

// NewAssembler creates an assembler. The index is optional: without one,
// sentence scoring falls back to keyword bonuses alone.
func NewAssembler(index *Index, config AssemblerConfig) *Assembler {
	return &Assembler{index: index, config: config}
}

// Assemble concatenates the top-ranked chunk texts into a context string
// that never exceeds the character budget. Truncation happens at chunk
// joins, not mid-sentence where avoidable.
func (a *Assembler) Assemble(result Result, keywords []string, optionTexts []string) string {
	if result.Empty() {
		return ""
	}

	limit := a.config.MaxChunks
	if limit <= 0 || limit > len(result.Matches) {
		limit = len(result.Matches)
	}

	var parts []string
	total := 0
	for _, m := range result.Matches[:limit] {
		text := strings.TrimSpace(m.Chunk.Text)
		if a.config.SentencesPerChunk > 0 {
			text = a.extractSentences(text, keywords, optionTexts)
		}
		if text == "" {
			continue
		}

		// Budget check at the join: a chunk that would overflow is dropped
		// entirely rather than cut mid-sentence.
		joined := total + len(text)
		if len(parts) > 0 {
			joined += 2 // separator
		}
		if joined > a.config.MaxChars {
			if len(parts) == 0 {
				// First chunk alone exceeds the budget; hard-truncate it.
				cut := truncateRunes(text, a.config.MaxChars)
				parts = append(parts, cut)
				total = len(cut)
			}
			break
		}
		parts = append(parts, text)
		total = joined
	}

	return strings.Join(parts, "\n\n")
}

// truncateRunes cuts s to at most max bytes without splitting a rune, so
// accented text never leaves invalid UTF-8 at the cut point.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// extractSentences keeps the top-scoring sentences of a chunk. A sentence
// scores its summed term IDF weight plus a large bonus when it contains a
// question keyword or near-verbatim option text, which filters out
// topically-adjacent but irrelevant sentences.
func (a *Assembler) extractSentences(text string, keywords []string, optionTexts []string) string {
	sentences := SplitSentences(text)
	if len(sentences) <= a.config.SentencesPerChunk {
		return text
	}

	type scored struct {
		pos   int
		score float64
	}

	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		lowered := strings.ToLower(sentence)
		var score float64

		if a.index != nil {
			for _, token := range Tokenize(sentence) {
				score += a.index.IDF(token)
			}
		}
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				score += a.config.KeywordSentenceBonus
			}
		}
		for _, option := range optionTexts {
			if prefix := optionPrefix(strings.ToLower(option)); prefix != "" && strings.Contains(lowered, prefix) {
				score += a.config.KeywordSentenceBonus
			}
		}

		ranked[i] = scored{pos: i, score: score}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	keep := ranked[:a.config.SentencesPerChunk]
	sort.Slice(keep, func(i, j int) bool { return keep[i].pos < keep[j].pos })

	out := make([]string, len(keep))
	for i, s := range keep {
		out[i] = sentences[s.pos]
	}
	return strings.Join(out, " ")
}
