package rag

import (
	"math"
	"sort"
	"strings"

	"github.com/atenalab/quizrag/internal/corpus"
	"github.com/atenalab/quizrag/internal/quiz"
)

// LexicalConfig tunes the sparse retrieval scoring. The defaults were
// arrived at empirically; treat them as configuration, not verified
// constants.
type LexicalConfig struct {
	// KeywordWeight is added per keyword present in a chunk
	KeywordWeight float64 `yaml:"keyword_weight"`

	// OptionExactBonus is added when a chunk contains an option's full text
	OptionExactBonus float64 `yaml:"option_exact_bonus"`

	// OptionPrefixBonus is added for a partial (prefix) option match
	OptionPrefixBonus float64 `yaml:"option_prefix_bonus"`

	// MultiKeywordFactor multiplies the score when distinct keyword hits
	// exceed MultiKeywordCount
	MultiKeywordFactor float64 `yaml:"multi_keyword_factor"`
	MultiKeywordCount  int     `yaml:"multi_keyword_count"`

	// MinChunkLength halves the score of shorter chunks; short chunks are
	// unreliable evidence
	MinChunkLength int `yaml:"min_chunk_length"`

	// MinScore is the relevance threshold a chunk must clear
	MinScore float64 `yaml:"min_score"`

	// TopN is the number of matches kept per question
	TopN int `yaml:"top_n"`

	// NeighborWindow is how far to borrow matches from adjacent questions
	// when a question's own search comes back empty
	NeighborWindow int `yaml:"neighbor_window"`
}

// DefaultLexicalConfig returns the scoring defaults.
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{
		KeywordWeight:      10,
		OptionExactBonus:   50,
		OptionPrefixBonus:  25,
		MultiKeywordFactor: 1.5,
		MultiKeywordCount:  3,
		MinChunkLength:     80,
		MinScore:           25,
		TopN:               3,
		NeighborWindow:     2,
	}
}

// Index is an inverted index plus TF-IDF weight table over a chunk corpus.
// It is built once per process lifetime and immutable afterwards, so it is
// safe for concurrent readers without locking.
type Index struct {
	corpus   *corpus.Corpus
	postings map[string][]int // term -> chunk positions
	idf      map[string]float64
	lowered  []string // lowercased chunk text, parallel to corpus.Chunks()
}

// BuildIndex constructs the inverted index and IDF table for a corpus.
func BuildIndex(c *corpus.Corpus) (*Index, error) {
	if c == nil || c.Len() == 0 {
		return nil, corpus.ErrCorpusEmpty
	}

	chunks := c.Chunks()
	idx := &Index{
		corpus:   c,
		postings: make(map[string][]int),
		idf:      make(map[string]float64),
		lowered:  make([]string, len(chunks)),
	}

	df := make(map[string]int)
	for i, ch := range chunks {
		idx.lowered[i] = strings.ToLower(ch.Text)

		// Every token is indexed; minimum keyword length is enforced at
		// extraction time, so the postings must not pre-filter terms the
		// extractor could be configured to emit.
		terms := make(map[string]struct{})
		for _, token := range Tokenize(ch.Text) {
			terms[token] = struct{}{}
		}
		for _, term := range sortedTerms(terms) {
			idx.postings[term] = append(idx.postings[term], i)
			df[term]++
		}
	}

	n := float64(len(chunks))
	for term, count := range df {
		idx.idf[term] = math.Log(n / (1 + float64(count)))
	}

	return idx, nil
}

// IDF returns the inverse-document-frequency weight of a term, 0 when the
// term never occurs in the corpus.
func (idx *Index) IDF(term string) float64 {
	return idx.idf[term]
}

// LexicalRetriever ranks chunks by keyword overlap and option-text matches
// against a locally built index. No external services are involved.
type LexicalRetriever struct {
	index  *Index
	config LexicalConfig
}

// NewLexicalRetriever creates a retriever over a built index.
func NewLexicalRetriever(index *Index, config LexicalConfig) *LexicalRetriever {
	return &LexicalRetriever{index: index, config: config}
}

// Retrieve scores every candidate chunk for the question's keywords and
// returns the top-N matches that clear the minimum score. An empty match
// list is a valid, expected outcome when corpus coverage is weak.
func (r *LexicalRetriever) Retrieve(question quiz.Question, keywords []string) Result {
	scores := make(map[int]float64)
	hits := make(map[int]int)

	for _, kw := range keywords {
		for _, pos := range r.index.postings[kw] {
			scores[pos] += r.config.KeywordWeight
			hits[pos]++
		}
	}

	// Option-text bonuses apply to every chunk, not just the keyword-hit
	// set: a chunk quoting an option verbatim is strong evidence even when
	// the extracted keywords all miss it.
	for _, option := range question.OptionTexts() {
		lowered := strings.ToLower(option)
		prefix := optionPrefix(lowered)
		for pos, text := range r.index.lowered {
			if strings.Contains(text, lowered) {
				scores[pos] += r.config.OptionExactBonus
				continue
			}
			if prefix != "" && strings.Contains(text, prefix) {
				scores[pos] += r.config.OptionPrefixBonus
			}
		}
	}

	for pos := range scores {
		if hits[pos] > r.config.MultiKeywordCount {
			scores[pos] *= r.config.MultiKeywordFactor
		}
		if len(r.index.lowered[pos]) < r.config.MinChunkLength {
			scores[pos] /= 2
		}
	}

	matches := r.ranked(scores)

	kept := make([]Match, 0, r.config.TopN)
	for _, m := range matches {
		if m.Score < r.config.MinScore {
			break
		}
		kept = append(kept, m)
		if len(kept) >= r.config.TopN {
			break
		}
	}

	return Result{Matches: kept}
}

// ranked converts the score map into a deterministically ordered match list:
// descending score, chunk position as tie-break so repeated retrievals over
// the same corpus are identical.
func (r *LexicalRetriever) ranked(scores map[int]float64) []Match {
	positions := make([]int, 0, len(scores))
	for pos := range scores {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})

	chunks := r.index.corpus.Chunks()
	matches := make([]Match, len(positions))
	for i, pos := range positions {
		matches[i] = Match{Chunk: chunks[pos], Score: scores[pos]}
	}
	return matches
}

// BorrowNeighbors fills empty results by borrowing matches from questions
// within the configured window in the same batch. Adjacent quiz questions
// often share subject matter; borrowed matches are tagged as inferred so
// confidence scoring can deprioritize them.
func (r *LexicalRetriever) BorrowNeighbors(results []Result) []Result {
	window := r.config.NeighborWindow
	if window <= 0 {
		return results
	}

	out := make([]Result, len(results))
	copy(out, results)

	for i, res := range results {
		if !res.Empty() {
			continue
		}
		for offset := 1; offset <= window; offset++ {
			for _, j := range []int{i - offset, i + offset} {
				if j < 0 || j >= len(results) || results[j].Empty() || results[j].InferredFromContext {
					continue
				}
				out[i] = Result{
					Matches:             results[j].Matches,
					InferredFromContext: true,
				}
			}
			if !out[i].Empty() {
				break
			}
		}
	}

	return out
}

// optionPrefix returns the leading portion of an option's text used for
// partial matching, empty when the option is too short to be meaningful.
func optionPrefix(option string) string {
	const prefixLen = 20
	runes := []rune(option)
	if len(runes) < prefixLen {
		return ""
	}
	return strings.TrimSpace(string(runes[:prefixLen]))
}
