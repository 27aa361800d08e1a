package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/atenalab/quizrag/internal/corpus"
	"github.com/atenalab/quizrag/internal/rag"
)

var (
	indexOut       string
	indexDense     bool
	indexChromem   string
	indexBatchSize int
	indexDelay     time.Duration
	indexVerbose   bool
)

var indexCmd = &cobra.Command{
	Use:   "index [course.pdf|course.txt]",
	Short: "Chunk a course document and build the retrieval corpus",
	Long: `Extract text from a course document, split it into chunks, and write
the corpus file consumed by the answer command. With --dense the chunks are
also embedded in batches and loaded into a vector store.

Examples:
  quizrag index corso_completo.pdf --out data/chunks.json
  quizrag index corso_completo.pdf --out data/chunks.json --dense
  quizrag index notes.txt --out data/chunks.json --dense --chromem data/vectors`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexOut, "out", "chunks.json", "Output corpus file")
	indexCmd.Flags().BoolVar(&indexDense, "dense", false, "Embed chunks and load them into a vector store")
	indexCmd.Flags().StringVar(&indexChromem, "chromem", "", "Use embedded chromem store at this path instead of Milvus")
	indexCmd.Flags().IntVar(&indexBatchSize, "batch", 10, "Embedding batch size")
	indexCmd.Flags().DurationVar(&indexDelay, "delay", 250*time.Millisecond, "Pause between embedding batches")
	indexCmd.Flags().BoolVar(&indexVerbose, "verbose", false, "Show progress details")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := newLogger(indexVerbose)

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)

	// Step 1: Extract pages
	var pages []corpus.Page
	if strings.HasSuffix(strings.ToLower(args[0]), ".pdf") {
		var err error
		pages, err = corpus.ExtractPDF(args[0])
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
		pages = []corpus.Page{{Number: 1, Text: string(data)}}
	}
	log.Info().Int("pages", len(pages)).Msg("extracted document")

	// Step 2: Chunk
	chunks := corpus.Split(pages, corpus.DefaultSplitConfig())
	c, err := corpus.New(chunks)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	log.Info().Int("chunks", c.Len()).Msg("chunked corpus")

	// Step 3: Write corpus file
	data, err := json.MarshalIndent(c.Chunks(), "", "  ")
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	if err := os.WriteFile(indexOut, data, 0o644); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Wrote %d chunks to %s", c.Len(), indexOut)))

	if !indexDense {
		return nil
	}

	// Step 4: Embed in batches and load into the vector store
	embedder, err := rag.NewOpenAIEmbedder("text-embedding-3-small", 1536)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	var store rag.VectorStore
	if indexChromem != "" {
		store, err = rag.NewChromemStore(indexChromem, "quiz_course_chunks")
	} else {
		store, err = rag.NewMilvusStore(ctx, rag.DefaultMilvusConfig())
	}
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}
	defer store.Close()

	opts := rag.IndexOptions{
		BatchSize:  indexBatchSize,
		BatchDelay: indexDelay,
	}
	if err := rag.IndexCorpus(ctx, c, embedder, store, opts, log); err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	count, _ := store.Count(ctx)
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d vectors", count)))
	return nil
}
