package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatTopK int

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions in an interactive loop",
	Long: `Starts an interactive loop for asking questions about your highlights.
Each question is answered independently; no conversation state carries
over between turns. Type "exit" or "quit" (or press Ctrl-D) to leave.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0,
		"number of highlights to retrieve per question (default from config, then 5)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	k := chatTopK
	if k <= 0 && configStore != nil {
		k = configStore.GetInt("query.top_k")
	}

	ctx := context.Background()
	if err := queryService.Open(ctx); err != nil {
		return fmt.Errorf("opening query pipeline: %w", err)
	}

	cmd.Println(`Ask about your highlights. Type "exit" to leave.`)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		result, err := queryService.Ask(ctx, question, k)
		if err != nil {
			// A failed turn ends the question, not the session.
			cmd.Printf("Error: %v\n", err)
			continue
		}
		printAnswer(cmd, result)
		cmd.Println()
	}
}
