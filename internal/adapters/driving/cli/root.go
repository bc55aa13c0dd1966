// Package cli implements the lexica command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/lexica/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexica/internal/adapters/driven/embedding/openai"
	sourcefile "github.com/custodia-labs/lexica/internal/adapters/driven/sources/file"
	"github.com/custodia-labs/lexica/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/lexica/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexica/internal/core/ports/driven"
	"github.com/custodia-labs/lexica/internal/core/ports/driving"
	"github.com/custodia-labs/lexica/internal/core/services"
	"github.com/custodia-labs/lexica/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services and collaborators wired by initApp. Tests inject their own
// and set initialized to skip the wiring.
var (
	cfg         *configfile.Config
	store       driven.IndexStore
	embedder    driven.EmbeddingService
	sourceRepo  driven.SourceRepository
	indexer     driving.Indexer
	searcher    driving.Searcher
	initialized bool
)

var (
	configPath  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "lexica",
	Short: "Hybrid semantic and lexical document search",
	Long: `Lexica indexes documents with vector embeddings and a lexical
term index, then answers queries with a blended semantic + keyword
ranking. Run "lexica setup" once to create the configuration and the
index schema.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initApp()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		teardownApp()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.lexica/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}

// initApp loads configuration and wires adapters and services. The
// embedding provider and the document source are optional here;
// commands that need them check and fail with a clear message.
func initApp() error {
	if initialized {
		return nil
	}

	var err error
	cfg, err = configfile.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch cfg.Store.Backend {
	case configfile.BackendPostgres:
		store, err = postgres.NewStore(cfg.Store.DSN)
	default:
		store, err = sqlite.NewStore(cfg.Store.DataDir)
	}
	if err != nil {
		return fmt.Errorf("opening index store: %w", err)
	}

	if cfg.OpenAI.APIKey != "" {
		embedder, err = openai.NewEmbeddingService(openai.Config{
			APIKey:       cfg.OpenAI.APIKey,
			BaseURL:      cfg.OpenAI.BaseURL,
			Model:        cfg.OpenAI.Model,
			Timeout:      cfg.OpenAI.Timeout(),
			RateLimit:    cfg.OpenAI.RateLimit,
			MaxChunkSize: cfg.Chunking.MaxChunkSize,
			OverlapSize:  cfg.Chunking.OverlapSize,
		})
		if err != nil {
			return fmt.Errorf("creating embedding service: %w", err)
		}
	}

	if cfg.Sources.Dir != "" {
		sourceRepo, err = sourcefile.NewRepository(cfg.Sources.Dir)
		if err != nil {
			return fmt.Errorf("opening document source: %w", err)
		}
	}

	if embedder != nil {
		indexer = services.NewIndexerService(store, embedder, sourceRepo, 0)
		searcher = services.NewSearcherService(store, embedder, cfg.Search.DefaultLimit)
	}

	initialized = true
	return nil
}

func teardownApp() {
	if store != nil {
		_ = store.Close()
	}
	if embedder != nil {
		_ = embedder.Close()
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
