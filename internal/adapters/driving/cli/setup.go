package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/lexica/internal/adapters/driven/config/file"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the configuration file and the index schema",
	Long: `Writes a starter configuration to ~/.lexica/config.toml (unless one
exists), creates the index store schema and verifies the embedding
provider if an API key is configured.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := configfile.WriteDefault(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		cmd.Printf("Wrote default configuration to %s\n", path)
		cmd.Println("Set your provider API key there or export OPENAI_API_KEY.")
	} else {
		cmd.Printf("Configuration found at %s\n", path)
	}

	ctx := context.Background()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}
	cmd.Println("Index schema ready.")

	if embedder == nil {
		cmd.Println("No provider API key configured yet; indexing and search need one.")
		return nil
	}

	if err := embedder.Ping(ctx); err != nil {
		return fmt.Errorf("embedding provider check failed: %w", err)
	}
	cmd.Printf("Embedding provider reachable (model %s, %d dimensions).\n",
		embedder.ModelName(), embedder.Dimensions())
	return nil
}
