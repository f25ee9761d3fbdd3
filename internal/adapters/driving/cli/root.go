// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/config/file"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/embedding/ollama"
	llmollama "github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/llm/ollama"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/readwise"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/adapters/driven/storage/sqlite"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driven"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/ports/driving"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/services"
	"github.com/ramonbnuezjr/project-rag-neocortex/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected at startup. Tests replace these with mocks.
var (
	ingestService driving.IngestOrchestrator
	queryService  driving.QueryPipeline
	indexStore    driven.IndexStore
	configStore   driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "neocortex",
	Short: "Ask questions of your reading highlights",
	Long: `Neocortex turns your saved reading highlights into a queryable
second brain. It fetches your highlight archive from Readwise, indexes
it locally, and answers questions grounded in what you actually read,
using models running on your own machine.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable verbose diagnostic output")
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute wires the production services and runs the root command.
func Execute() error {
	if err := initServices(); err != nil {
		return fmt.Errorf("initializing services: %w", err)
	}
	return rootCmd.Execute()
}

// initServices builds the production adapter stack from configuration.
func initServices() error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(cfg.GetString("data_dir"))
	if err != nil {
		return err
	}
	indexStore = store

	embedder := ollama.NewEmbeddingService(ollama.Config{
		BaseURL: cfg.GetString("ollama.base_url"),
		Model:   cfg.GetString("ollama.embedding_model"),
	})
	llm := llmollama.NewLLMService(llmollama.Config{
		BaseURL: cfg.GetString("ollama.base_url"),
		Model:   cfg.GetString("ollama.llm_model"),
	})
	exporter := readwise.NewClient(readwise.Config{})

	ingestService = services.NewIngestService(exporter, embedder, store)

	query := services.NewQueryService(embedder, llm, store)
	if budget := cfg.GetInt("query.context_budget"); budget > 0 {
		query.SetContextBudget(budget)
	}
	if prompts, err := file.NewPromptStore(""); err == nil {
		query.SetPromptStore(prompts)
	}
	queryService = query

	return nil
}
