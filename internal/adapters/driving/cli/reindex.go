package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexica/internal/core/ports/driving"
)

var reindexScope int64

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the index from scratch",
	Long: `Clears the index and re-embeds every eligible document. Unchanged-
content skipping does not apply; every document is embedded again.`,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().Int64Var(&reindexScope, "scope", 0, "restrict to one root scope (0 = all)")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, _ []string) error {
	if indexer == nil {
		return errors.New("indexing not configured: set a provider API key")
	}
	if sourceRepo == nil {
		return errors.New("no document source configured: set sources.dir in the config")
	}

	ctx := context.Background()

	if err := indexer.ClearAll(ctx); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}

	report, err := indexer.IndexAll(ctx, driving.IndexOptions{ScopeID: reindexScope, Force: true})
	if err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}
