package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/atenalab/quizrag/internal/answer"
	"github.com/atenalab/quizrag/internal/corpus"
	"github.com/atenalab/quizrag/internal/orchestrator"
	"github.com/atenalab/quizrag/internal/quiz"
	"github.com/atenalab/quizrag/internal/rag"
)

var (
	answerStrategy string
	keywordFile    string
	milvusColl     string
	chromemPath    string
	answerVerbose  bool
)

var answerCmd = &cobra.Command{
	Use:   "answer [corpus.json] [questions.json]",
	Short: "Answer a batch of quiz questions against a corpus",
	Long: `Answer multiple-choice quiz questions using retrieval-augmented generation.

This command:
1. Loads the chunk corpus and the extracted questions
2. Retrieves relevant passages per question (lexical index or vector store)
3. Assembles a bounded context and asks an LLM for an answer letter
4. Prints one answer with a heuristic confidence score per question

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and LLM
  MILVUS_ADDRESS     - Milvus server address (dense strategy only)

Examples:
  quizrag answer data/chunks.json quiz.json
  quizrag answer data/chunks.json quiz.json --strategy dense
  quizrag answer data/chunks.json quiz.json --keywords tuning.yaml --verbose`,
	Args: cobra.ExactArgs(2),
	RunE: runAnswer,
}

func init() {
	rootCmd.AddCommand(answerCmd)
	answerCmd.Flags().StringVar(&answerStrategy, "strategy", "lexical", "Retrieval strategy: lexical or dense")
	answerCmd.Flags().StringVar(&keywordFile, "keywords", "", "Keyword tuning YAML file (stop-words, synonyms)")
	answerCmd.Flags().StringVar(&milvusColl, "collection", "", "Milvus collection name (dense strategy)")
	answerCmd.Flags().StringVar(&chromemPath, "chromem", "", "Use embedded chromem store at this path instead of Milvus")
	answerCmd.Flags().BoolVar(&answerVerbose, "verbose", false, "Show retrieval details")
}

func runAnswer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger(answerVerbose)

	// Styling
	var (
		headerColor   = lipgloss.Color("#F780FF") // Bright pink
		questionColor = lipgloss.Color("#8BE9FD") // Cyan
		answerColor   = lipgloss.Color("#50FA7B") // Green
		lowConfColor  = lipgloss.Color("#FFB86C") // Orange
		errorColor    = lipgloss.Color("#FF5555") // Red
	)

	headerStyle := lipgloss.NewStyle().Foreground(headerColor).Bold(true)
	questionStyle := lipgloss.NewStyle().Foreground(questionColor)
	answerStyle := lipgloss.NewStyle().Foreground(answerColor).Bold(true)
	lowConfStyle := lipgloss.NewStyle().Foreground(lowConfColor).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	// Step 1: Load corpus; an empty corpus is a deployment problem and
	// fails the whole run.
	c, err := corpus.Load(args[0])
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	// Step 2: Load questions (best-effort parse of extraction output)
	raw, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	questions, err := quiz.ParseQuestions(raw)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	// Step 3: Build pipeline
	config := orchestrator.DefaultConfig()
	if keywordFile != "" {
		kw, err := rag.LoadKeywordConfig(keywordFile)
		if err != nil {
			return fmt.Errorf("%s failed to load keyword config: %w", errorStyle.Render("Error:"), err)
		}
		config.Keyword = kw
	}

	llm, err := answer.NewOpenAILLM(config.LLM)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	var pipeline *orchestrator.Pipeline
	switch answerStrategy {
	case "dense":
		embedder, err := rag.NewOpenAIEmbedder("text-embedding-3-small", 1536)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
		store, err := openStore(ctx)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
		defer store.Close()

		pipeline, err = orchestrator.NewDense(c, embedder, store, llm, config, log)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
	case "lexical":
		pipeline, err = orchestrator.New(c, llm, config, log)
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
	default:
		return fmt.Errorf("%s unknown strategy %q", errorStyle.Render("Error:"), answerStrategy)
	}

	// Step 4: Answer the batch
	results, err := pipeline.AnswerBatch(ctx, questions)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Answers (%d questions, %d chunks):", len(results), c.Len())))
	fmt.Println()
	for _, res := range results {
		style := answerStyle
		if res.Confidence < 70 {
			style = lowConfStyle
		}
		fmt.Printf("%s %s %s\n",
			questionStyle.Render(fmt.Sprintf("Q%d:", res.Number)),
			style.Render(res.Answer),
			questionStyle.Render(fmt.Sprintf("(confidence %d%%)", res.Confidence)),
		)
	}
	fmt.Println()

	return json.NewEncoder(os.Stdout).Encode(results)
}

// openStore picks the dense backend: embedded chromem when requested,
// Milvus otherwise.
func openStore(ctx context.Context) (rag.VectorStore, error) {
	if chromemPath != "" {
		return rag.NewChromemStore(chromemPath, "quiz_course_chunks")
	}
	mc := rag.DefaultMilvusConfig()
	if milvusColl != "" {
		mc.CollectionName = milvusColl
	}
	return rag.NewMilvusStore(ctx, mc)
}
