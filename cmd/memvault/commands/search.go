// ABOUTME: CLI command for searching stored memory
// ABOUTME: Searches messages by default, facts with --facts
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

var (
	searchFactsFlag bool
	searchLimit     int
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search messages or facts",
		Long: `Search stored memory for a substring.

Examples:
  memvault search "weather"
  memvault search --facts "Brooklyn"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().BoolVar(&searchFactsFlag, "facts", false, "Search facts instead of messages")
	cmd.Flags().IntVar(&searchLimit, "limit", 20, "Maximum results (messages only)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if searchFactsFlag {
		data, err := unwrap(gw.SearchFacts(ctx, gateway.SearchFactsParams{Query: args[0]}))
		if err != nil {
			return err
		}
		facts := data.([]models.Fact)
		if outputFormat == "json" {
			return printJSON(facts)
		}
		if len(facts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching facts")
			return nil
		}
		for _, f := range facts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s.%s: %s\n", f.ID, f.Category, f.Predicate, truncate(f.Object, 60))
		}
		return nil
	}

	data, err := unwrap(gw.SearchMessages(ctx, gateway.SearchMessagesParams{Query: args[0], Limit: searchLimit}))
	if err != nil {
		return err
	}
	messages := data.([]models.Message)
	if outputFormat == "json" {
		return printJSON(messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching messages")
		return nil
	}
	for _, m := range messages {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", formatTime(m.CreatedAt), m.Role, truncate(m.Content, 80))
	}
	return nil
}
