package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexica/internal/core/domain"
	"github.com/custodia-labs/lexica/internal/core/ports/driving"
)

var (
	indexScope int64
	indexForce bool
)

var indexCmd = &cobra.Command{
	Use:   "index [document-id]",
	Short: "Index documents into the search index",
	Long: `Indexes documents from the configured source directory.
With a document ID, indexes that single document. Without arguments,
indexes every eligible document, skipping ones whose content has not
changed since the last run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Int64Var(&indexScope, "scope", 0, "restrict to one root scope (0 = all)")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "re-embed even unchanged documents")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("indexing not configured: set a provider API key")
	}
	if sourceRepo == nil {
		return errors.New("no document source configured: set sources.dir in the config")
	}

	ctx := context.Background()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}

		doc, err := sourceRepo.GetDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("loading document %d: %w", id, err)
		}

		res, err := indexer.IndexDocument(ctx, doc, indexForce)
		if err != nil {
			return fmt.Errorf("indexing document %d: %w", id, err)
		}
		if res.Skipped {
			cmd.Printf("Document %d unchanged, skipped.\n", id)
		} else {
			cmd.Printf("Document %d indexed.\n", id)
		}
		return nil
	}

	report, err := indexer.IndexAll(ctx, driving.IndexOptions{ScopeID: indexScope, Force: indexForce})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printReport(cmd, report)
	return nil
}

func printReport(cmd *cobra.Command, report *domain.IndexReport) {
	cmd.Printf("Indexed %d, skipped %d, failed %d.\n",
		report.Indexed, report.Skipped, report.Failed)
	for _, res := range report.Results {
		if res.Err != nil {
			cmd.Printf("  failed: %s/%d: %v\n", res.SourceType, res.DocumentID, res.Err)
		}
	}
}
