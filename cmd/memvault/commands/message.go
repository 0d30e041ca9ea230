// ABOUTME: CLI commands for session messages
// ABOUTME: Appends messages and shows a session's recent history
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

var (
	messageSession string
	messageRole    string
	messageCount   int
)

// NewMessageCmd creates the message command group
func NewMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "message",
		Short: "Add and read session messages",
	}

	add := &cobra.Command{
		Use:   "add [content]",
		Short: "Append a message to a session",
		Long: `Append a message to a session. Without --session the message goes
to the current open session.

Examples:
  memvault message add "what's the weather like?"
  memvault message add --role assistant "Sunny, around 22C."`,
		Args: cobra.ExactArgs(1),
		RunE: runMessageAdd,
	}
	add.Flags().StringVar(&messageSession, "session", "", "Target session id")
	add.Flags().StringVar(&messageRole, "role", "user", "Message role: user, assistant, or system")

	recent := &cobra.Command{
		Use:   "recent",
		Short: "Show a session's most recent messages",
		RunE:  runMessageRecent,
	}
	recent.Flags().StringVar(&messageSession, "session", "", "Session id (default: current open session)")
	recent.Flags().IntVar(&messageCount, "count", 10, "Number of messages")

	cmd.AddCommand(add, recent)
	return cmd
}

func runMessageAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.AddMessage(ctx, gateway.AddMessageParams{
		SessionID: messageSession,
		Role:      messageRole,
		Content:   args[0],
	}))
	if err != nil {
		return err
	}
	if outputFormat == "json" {
		return printJSON(data)
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Message added")
	}
	return nil
}

func runMessageRecent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.GetRecentMessages(ctx, gateway.RecentMessagesParams{
		SessionID: messageSession,
		Count:     messageCount,
	}))
	if err != nil {
		return err
	}
	messages := data.([]models.Message)
	if outputFormat == "json" {
		return printJSON(messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No messages")
		return nil
	}
	for _, m := range messages {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", formatTime(m.CreatedAt), m.Role, m.Content)
	}
	return nil
}
