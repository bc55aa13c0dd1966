package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexica/internal/core/domain"
)

var (
	searchLimit int
	searchScope int64
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Runs a hybrid query: semantic similarity against the stored vectors
blended with lexical keyword relevance.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = config default)")
	searchCmd.Flags().Int64Var(&searchScope, "scope", 0, "restrict to one root scope (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searcher == nil {
		return errors.New("search not configured: set a provider API key")
	}

	results, err := searcher.Search(context.Background(), domain.SearchQuery{
		Text:    args[0],
		ScopeID: searchScope,
		Limit:   searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchResultJSON is the stable JSON shape for one hit.
type searchResultJSON struct {
	SourceID         int64   `json:"source_id"`
	SourceType       string  `json:"source_type"`
	LanguageID       int     `json:"language_id"`
	Title            string  `json:"title"`
	URL              string  `json:"url"`
	SemanticDistance float64 `json:"semantic_distance"`
	LexicalRank      float64 `json:"lexical_rank"`
	CombinedScore    float64 `json:"combined_score"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, len(results))
	for i, res := range results {
		out[i] = searchResultJSON{
			SourceID:         res.Entry.Key.SourceID,
			SourceType:       res.Entry.Key.SourceType,
			LanguageID:       res.Entry.Key.LanguageID,
			Title:            res.Entry.Title,
			URL:              res.Entry.URL,
			SemanticDistance: res.SemanticDistance,
			LexicalRank:      res.LexicalRank,
			CombinedScore:    res.CombinedScore,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, res := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, res.Entry.Title, res.CombinedScore)
		if res.Entry.URL != "" {
			cmd.Printf("      %s\n", res.Entry.URL)
		}
		cmd.Printf("      distance %.3f, lexical %.3f\n", res.SemanticDistance, res.LexicalRank)
		cmd.Println()
	}
	return nil
}
