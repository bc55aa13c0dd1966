package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var removeType string

var removeCmd = &cobra.Command{
	Use:   "remove [document-id]",
	Short: "Remove a document from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().StringVar(&removeType, "type", "pages", "source type of the document")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q", args[0])
	}

	if err := store.Remove(context.Background(), id, removeType); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}

	cmd.Printf("Document %d (%s) removed from index.\n", id, removeType)
	return nil
}
