package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

var (
	similarType  string
	similarLimit int
	similarJSON  bool
)

var similarCmd = &cobra.Command{
	Use:   "similar [document-id]",
	Short: "Find documents similar to an indexed document",
	Long: `Returns the indexed documents whose content vectors are nearest to
the given document's, ascending by cosine distance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVar(&similarType, "type", "pages", "source type of the reference document")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 0, "maximum number of results (0 = config default)")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if searcher == nil {
		return errors.New("search not configured: set a provider API key")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	results, err := searcher.FindSimilar(context.Background(), id, similarType, similarLimit)
	if err != nil {
		return fmt.Errorf("similarity scan failed: %w", err)
	}

	if similarJSON {
		return outputSimilarJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}

	cmd.Println("Similar documents:")
	cmd.Println()
	for i, res := range results {
		cmd.Printf("  [%d] %s (distance %.3f)\n", i+1, res.Entry.Title, res.Distance)
		if res.Entry.URL != "" {
			cmd.Printf("      %s\n", res.Entry.URL)
		}
	}
	return nil
}

type similarResultJSON struct {
	SourceID   int64   `json:"source_id"`
	SourceType string  `json:"source_type"`
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Distance   float64 `json:"distance"`
}

func outputSimilarJSON(cmd *cobra.Command, results []domain.SimilarResult) error {
	out := make([]similarResultJSON, len(results))
	for i, res := range results {
		out[i] = similarResultJSON{
			SourceID:   res.Entry.Key.SourceID,
			SourceType: res.Entry.Key.SourceType,
			Title:      res.Entry.Title,
			URL:        res.Entry.URL,
			Distance:   res.Distance,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
