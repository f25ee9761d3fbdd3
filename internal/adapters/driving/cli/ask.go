package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramonbnuezjr/project-rag-neocortex/internal/core/domain"
)

var askTopK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question grounded in your highlights",
	Long: `Embeds the question, retrieves the most similar highlights from the
local index, and generates an answer grounded in them. The retrieved
highlights are listed after the answer with their similarity scores.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0,
		"number of highlights to retrieve (default from config, then 5)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	k := askTopK
	if k <= 0 && configStore != nil {
		k = configStore.GetInt("query.top_k")
	}

	ctx := context.Background()
	if err := queryService.Open(ctx); err != nil {
		return fmt.Errorf("opening query pipeline: %w", err)
	}

	result, err := queryService.Ask(ctx, question, k)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	printAnswer(cmd, result)
	return nil
}

// printAnswer writes the answer followed by its grounding sources.
// Shared by the one-shot ask command and the interactive chat loop.
func printAnswer(cmd *cobra.Command, result *domain.QueryResult) {
	cmd.Println(result.Answer)

	if len(result.Retrieved) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, r := range result.Retrieved {
			attribution := r.Entry.Metadata.Title
			if attribution == "" {
				attribution = r.Entry.ID
			}
			if r.Entry.Metadata.Author != "" {
				attribution += " - " + r.Entry.Metadata.Author
			}
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, attribution, r.Score)
		}
	}
}
