// ABOUTME: CLI commands for conversation sessions
// ABOUTME: Start, end, and list sessions through the gateway
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

var (
	sessionGoal    string
	sessionSummary string
	sessionLimit   int
)

// NewSessionCmd creates the session command group
func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage conversation sessions",
	}

	start := &cobra.Command{
		Use:   "start",
		Short: "Open a new session",
		Long: `Open a new conversation session.

Examples:
  memvault session start
  memvault session start --goal "plan the trip to Lisbon"`,
		RunE: runSessionStart,
	}
	start.Flags().StringVar(&sessionGoal, "goal", "", "What this session is for")

	end := &cobra.Command{
		Use:   "end [session-id]",
		Short: "Close a session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSessionEnd,
	}
	end.Flags().StringVar(&sessionSummary, "summary", "", "Closing summary")

	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, newest first",
		RunE:  runSessionList,
	}
	list.Flags().IntVar(&sessionLimit, "limit", 20, "Maximum sessions to show")

	cmd.AddCommand(start, end, list)
	return cmd
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.CreateSession(ctx, gateway.CreateSessionParams{Goal: sessionGoal}))
	if err != nil {
		return err
	}
	session := data.(*models.Session)
	if outputFormat == "json" {
		return printJSON(session)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session started: %s\n", session.ID)
	return nil
}

func runSessionEnd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := unwrap(gw.EndSession(ctx, gateway.EndSessionParams{
		SessionID: args[0],
		Summary:   sessionSummary,
	})); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Session ended")
	}
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.ListSessions(ctx, gateway.ListSessionsParams{Limit: sessionLimit}))
	if err != nil {
		return err
	}
	sessions := data.([]models.Session)
	if outputFormat == "json" {
		return printJSON(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTARTED\tGOAL")
	for _, s := range sessions {
		status := "open"
		if !s.Open() {
			status = "closed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, status, formatTime(s.StartedAt), truncate(s.Goal, 40))
	}
	return w.Flush()
}
