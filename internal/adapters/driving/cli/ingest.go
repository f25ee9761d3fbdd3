package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// EnvAPIKey is the environment variable holding the Readwise token.
// It takes precedence over the readwise.token config key.
const EnvAPIKey = "READWISE_API_KEY"

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and index your highlight archive",
	Long: `Fetches the complete highlight archive from Readwise, normalizes it
into retrievable units, embeds each unit, and upserts the result into the
local index. Re-running is safe: unchanged highlights are overwritten in
place, never duplicated.

The Readwise token is read from the READWISE_API_KEY environment variable,
falling back to the readwise.token config key.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	token := os.Getenv(EnvAPIKey)
	if token == "" && configStore != nil {
		token = configStore.GetString("readwise.token")
	}
	if token == "" {
		return fmt.Errorf("no Readwise token: set %s or the readwise.token config key", EnvAPIKey)
	}

	stats, err := ingestService.Ingest(context.Background(), token)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d units from %d sources", stats.Units, stats.Sources)
	if stats.Skipped > 0 {
		cmd.Printf(" (%d skipped)", stats.Skipped)
	}
	cmd.Println()
	return nil
}
