// Package cli implements the ragpipe command line interface.
package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/aqua777/go-ragpipe/config"
	"github.com/aqua777/go-ragpipe/rag"
)

var (
	cfgFile   string
	storePath string
	indexType string
	topK      int
	dimension int
	chunkSize int
)

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ragpipe",
		Short: "Retrieval-augmented question answering over your documents",
		Long: `ragpipe indexes documents into a persistent vector store and answers
questions about them using retrieval-augmented generation.

Documents are chunked, embedded and stored on disk; questions retrieve
the most similar chunks as context for the LLM.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "vector store path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&indexType, "index-type", "", "index type: flat or ivf (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (overrides config)")
	rootCmd.PersistentFlags().IntVar(&dimension, "dimension", 0, "embedding dimension (overrides config)")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 0, "ingestion chunk size in tokens (overrides config)")

	rootCmd.AddCommand(newIndexCommand())
	rootCmd.AddCommand(newAskCommand())
	rootCmd.AddCommand(newSearchCommand())
	rootCmd.AddCommand(newStatsCommand())
	rootCmd.AddCommand(newClearCommand())
	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newVersionCommand(version))

	return rootCmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ragpipe %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if indexType != "" {
		cfg.Store.IndexType = indexType
	}
	if topK > 0 {
		cfg.Retrieval.TopK = topK
	}
	if dimension > 0 {
		cfg.Store.Dimension = dimension
	}
	if chunkSize > 0 {
		cfg.Retrieval.ChunkSize = chunkSize
	}
	return cfg, nil
}

// buildEngine constructs the RAG engine from the resolved config.
func buildEngine() (*rag.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	engine, err := rag.NewEngine(rag.Config{
		OpenAIKey:      cfg.APIKey(),
		BaseURL:        cfg.OpenAI.BaseURL,
		LLMModel:       cfg.OpenAI.LLMModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Dimension:      cfg.Store.Dimension,
		StorePath:      cfg.Store.Path,
		Approximate:    cfg.Approximate(),
		TopK:           cfg.Retrieval.TopK,
		ChunkSize:      cfg.Retrieval.ChunkSize,
		ChunkOverlap:   cfg.Retrieval.ChunkOverlap,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, cfg, nil
}
