// ABOUTME: CLI command for goal-directed context selection
// ABOUTME: Builds a token-budgeted bundle of the most relevant memory
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/selector"
)

var (
	contextBudget    int
	contextSession   string
	contextAllowHigh bool
)

// NewContextCmd creates the context command
func NewContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context [goal]",
		Short: "Build a context bundle for a goal",
		Long: `Select the most relevant facts and recent messages for a goal and
pack them into a token budget.

Examples:
  memvault context "what should I cook tonight"
  memvault context --budget 500 "plan tomorrow's commute"`,
		Args: cobra.ExactArgs(1),
		RunE: runContext,
	}

	cmd.Flags().IntVar(&contextBudget, "budget", 0, "Token budget (100-3000, default from config)")
	cmd.Flags().StringVar(&contextSession, "session", "", "Session whose messages to consider")
	cmd.Flags().BoolVar(&contextAllowHigh, "allow-high-sensitivity", false, "Permit sensitivity-3 facts")

	return cmd
}

func runContext(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.BuildContext(ctx, gateway.BuildContextParams{
		Goal:                 args[0],
		TokenBudget:          contextBudget,
		SessionID:            contextSession,
		AllowHighSensitivity: contextAllowHigh,
	}))
	if err != nil {
		return err
	}
	bundle := data.(*selector.Bundle)
	if outputFormat == "json" {
		return printJSON(bundle)
	}

	printBucket(cmd, "Profile", bundle.Profile)
	printBucket(cmd, "Facts", bundle.Facts)
	printBucket(cmd, "Preferences", bundle.Preferences)
	printBucket(cmd, "Recent messages", bundle.RecentMessages)
	fmt.Fprintf(cmd.OutOrStdout(), "\nEstimated tokens: %d\n", bundle.TokenEstimate)
	return nil
}

func printBucket(cmd *cobra.Command, title string, slices []selector.Slice) {
	if len(slices) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", title)
	for _, s := range slices {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s", s.Text)
		if verbose {
			fmt.Fprintf(cmd.OutOrStdout(), "  (score %.3f, ~%d tokens)", s.Score, s.Tokens)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
