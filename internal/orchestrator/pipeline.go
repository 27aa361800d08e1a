// Package orchestrator wires the retrieval and answer-selection components
// into the end-to-end quiz pipeline: keywords -> retrieval -> context
// assembly -> answer selection -> confidence.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/atenalab/quizrag/internal/answer"
	"github.com/atenalab/quizrag/internal/corpus"
	"github.com/atenalab/quizrag/internal/quiz"
	"github.com/atenalab/quizrag/internal/rag"
)

// Strategy selects the retrieval backend.
type Strategy string

const (
	// StrategyLexical uses the local inverted index, no external services
	StrategyLexical Strategy = "lexical"

	// StrategyDense uses embedding similarity search against a vector store
	StrategyDense Strategy = "dense"
)

// Config holds configuration for the answer pipeline.
type Config struct {
	Strategy  Strategy
	Keyword   rag.KeywordConfig
	Lexical   rag.LexicalConfig
	Dense     rag.DenseConfig
	Assembler rag.AssemblerConfig
	LLM       answer.LLMConfig

	// Seed drives confidence jitter and fallback letter choice; zero means
	// a fixed default seed
	Seed int64
}

// DefaultConfig returns sensible defaults for the lexical strategy.
func DefaultConfig() Config {
	return Config{
		Strategy:  StrategyLexical,
		Keyword:   rag.DefaultKeywordConfig(),
		Lexical:   rag.DefaultLexicalConfig(),
		Dense:     rag.DefaultDenseConfig(),
		Assembler: rag.DefaultAssemblerConfig(),
		LLM:       answer.DefaultLLMConfig(),
	}
}

// Pipeline answers batches of quiz questions against a loaded corpus.
// The lexical index is built once at construction and read-only afterwards,
// so a single pipeline is safe for concurrent batches; within a batch,
// questions are processed one at a time because the downstream providers
// are rate-limited.
type Pipeline struct {
	config    Config
	index     *rag.Index
	lexical   *rag.LexicalRetriever
	dense     *rag.DenseRetriever
	assembler *rag.Assembler
	selector  *answer.Selector
	rng       *rand.Rand
	log       zerolog.Logger
}

// New creates a pipeline over a corpus using the lexical strategy.
// An empty corpus is a deployment problem, reported as ErrCorpusEmpty
// distinct from the per-question "no matches" outcome.
func New(c *corpus.Corpus, llm answer.LLM, config Config, log zerolog.Logger) (*Pipeline, error) {
	index, err := rag.BuildIndex(c)
	if err != nil {
		return nil, fmt.Errorf("failed to build lexical index: %w", err)
	}

	seed := config.Seed
	if seed == 0 {
		seed = 1
	}
	rng := rand.New(rand.NewSource(seed))

	p := &Pipeline{
		config:    config,
		index:     index,
		lexical:   rag.NewLexicalRetriever(index, config.Lexical),
		assembler: rag.NewAssembler(index, config.Assembler),
		selector:  answer.NewSelector(llm, rng, log),
		rng:       rng,
		log:       log,
	}
	return p, nil
}

// NewDense creates a pipeline using dense retrieval against a vector store.
// The lexical index is still built for sentence-level context trimming, so
// the corpus must be non-empty here too.
func NewDense(c *corpus.Corpus, embedder rag.Embedder, store rag.VectorStore, llm answer.LLM, config Config, log zerolog.Logger) (*Pipeline, error) {
	config.Strategy = StrategyDense

	p, err := New(c, llm, config, log)
	if err != nil {
		return nil, err
	}

	dense, err := rag.NewDenseRetriever(embedder, store, config.Dense, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dense retriever: %w", err)
	}
	p.dense = dense
	return p, nil
}

// AnswerBatch processes a batch of questions sequentially and returns one
// result per valid question. Per-question failures are recovered with the
// fallback ladder; one bad question never aborts its siblings. The returned
// slice is never empty: when every question is invalid, a single degenerate
// entry keeps the output contract non-empty.
func (p *Pipeline) AnswerBatch(ctx context.Context, questions []quiz.Question) ([]quiz.AnswerResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	valid := make([]quiz.Question, 0, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			p.log.Warn().Err(err).Int("question", q.Number).Msg("skipping invalid question")
			continue
		}
		valid = append(valid, q)
	}

	if len(valid) == 0 {
		p.log.Warn().Int("received", len(questions)).Msg("no valid questions in batch")
		return []quiz.AnswerResult{{Number: 1, Answer: "B", Confidence: 50}}, nil
	}

	// Stage 1: retrieval for the whole batch, so empty results can borrow
	// from neighbors before any answer is generated.
	results := make([]rag.Result, len(valid))
	keywords := make([][]string, len(valid))
	for i, q := range valid {
		keywords[i] = rag.Keywords(q.Text, q.OptionTexts(), p.config.Keyword)
		results[i] = p.retrieve(ctx, q, keywords[i])
		p.log.Debug().
			Int("question", q.Number).
			Int("matches", len(results[i].Matches)).
			Strs("keywords", keywords[i]).
			Msg("retrieved")
	}

	if p.config.Strategy == StrategyLexical {
		results = p.lexical.BorrowNeighbors(results)
	}

	// Stage 2: per-question context assembly, answer selection, confidence.
	answers := make([]quiz.AnswerResult, len(valid))
	for i, q := range valid {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		contextText := p.assembler.Assemble(results[i], keywords[i], q.OptionTexts())
		letter := p.selector.Select(ctx, q, contextText)
		confidence := answer.Confidence(len(contextText), results[i].InferredFromContext, p.rng)

		answers[i] = quiz.AnswerResult{
			Number:     q.Number,
			Answer:     letter,
			Confidence: confidence,
		}

		p.log.Info().
			Int("question", q.Number).
			Str("answer", letter).
			Int("confidence", confidence).
			Int("context_chars", len(contextText)).
			Bool("inferred", results[i].InferredFromContext).
			Msg("answered")
	}

	return answers, nil
}

// retrieve dispatches to the configured strategy. Dense retrieval degrades
// to an empty result on backend failure; lexical retrieval cannot fail.
func (p *Pipeline) retrieve(ctx context.Context, q quiz.Question, keywords []string) rag.Result {
	if p.config.Strategy == StrategyDense && p.dense != nil {
		return p.dense.Retrieve(ctx, q)
	}
	return p.lexical.Retrieve(q, keywords)
}
