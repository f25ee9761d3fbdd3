package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index statistics",
	Long:  `Shows the number of indexed units and the outcome of the last ingestion run.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if indexStore == nil {
		return errors.New("index store not configured")
	}

	ctx := context.Background()
	count, err := indexStore.Count(ctx)
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	cmd.Printf("Indexed units: %d\n", count)

	run, err := indexStore.LastRun(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Println("Last ingest:   never")
			return nil
		}
		return fmt.Errorf("reading ingest history: %w", err)
	}

	cmd.Printf("Last ingest:   %s (%d units, %d skipped)\n",
		run.FinishedAt.Local().Format("2006-01-02 15:04:05"), run.Units, run.Skipped)
	return nil
}
