package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atenalab/quizrag/internal/quiz"
)

// DenseConfig tunes the vector similarity retrieval.
type DenseConfig struct {
	// TopK is the raw similarity query size, deliberately larger than the
	// number of passages ultimately used so the threshold filter has
	// candidates to work with
	TopK int `yaml:"top_k"`

	// StrictThreshold is preferred when any match clears it
	StrictThreshold float64 `yaml:"strict_threshold"`

	// LenientThreshold is the primary filter
	LenientThreshold float64 `yaml:"lenient_threshold"`

	// FallbackN is how many raw results to keep when nothing clears even
	// the lenient threshold
	FallbackN int `yaml:"fallback_n"`
}

// DefaultDenseConfig returns the similarity thresholds. The cutoffs were
// tuned empirically; keep them configurable.
func DefaultDenseConfig() DenseConfig {
	return DenseConfig{
		TopK:             12,
		StrictThreshold:  0.7,
		LenientThreshold: 0.35,
		FallbackN:        3,
	}
}

// DenseRetriever ranks chunks by semantic similarity using precomputed
// embeddings held in a vector store.
type DenseRetriever struct {
	embedder Embedder
	store    VectorStore
	config   DenseConfig
	log      zerolog.Logger
}

// NewDenseRetriever creates a dense retriever.
func NewDenseRetriever(embedder Embedder, store VectorStore, config DenseConfig, log zerolog.Logger) (*DenseRetriever, error) {
	if embedder == nil || store == nil {
		return nil, ErrRetrievalUnavailable
	}
	return &DenseRetriever{embedder: embedder, store: store, config: config, log: log}, nil
}

// Retrieve embeds the question together with its options and runs a top-K
// similarity query, then applies the tiered threshold filter. Any backend
// failure degrades to an empty result: retrieval problems must never reach
// answer selection as errors.
func (r *DenseRetriever) Retrieve(ctx context.Context, question quiz.Question) Result {
	query := strings.TrimSpace(question.Text + " " + strings.Join(question.OptionTexts(), " "))
	if query == "" {
		r.log.Warn().Err(ErrEmptyQuery).Int("question", question.Number).Msg("nothing to embed, returning empty context")
		return Result{}
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		r.log.Warn().Err(err).Int("question", question.Number).Msg("embedding failed, returning empty context")
		return Result{}
	}

	raw, err := r.store.Search(ctx, vectors[0], r.config.TopK)
	if err != nil {
		r.log.Warn().Err(err).Int("question", question.Number).Msg("similarity search failed, returning empty context")
		return Result{}
	}

	return Result{Matches: TieredFilter(raw, r.config.StrictThreshold, r.config.LenientThreshold, r.config.FallbackN)}
}

// TieredFilter applies the three-tier threshold policy to ranked matches:
// keep everything above the strict threshold when at least one match clears
// it, otherwise everything above the lenient threshold, otherwise the top
// fallbackN raw results regardless of score. Retrieval never returns "no
// context" purely because of an overly strict cutoff when ranked candidates
// exist.
func TieredFilter(matches []Match, strict, lenient float64, fallbackN int) []Match {
	if len(matches) == 0 {
		return nil
	}

	var strictKept, lenientKept []Match
	for _, m := range matches {
		if m.Score >= strict {
			strictKept = append(strictKept, m)
		}
		if m.Score >= lenient {
			lenientKept = append(lenientKept, m)
		}
	}

	if len(strictKept) > 0 {
		return strictKept
	}
	if len(lenientKept) > 0 {
		return lenientKept
	}
	if fallbackN > len(matches) {
		fallbackN = len(matches)
	}
	return matches[:fallbackN]
}
