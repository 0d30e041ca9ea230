// ABOUTME: CLI command for store statistics and health
// ABOUTME: Shows record counts, file size, schema version, and integrity status
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		RunE:  runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.GetStats(ctx))
	if err != nil {
		return err
	}
	stats := data.(*sqlite.Stats)
	if outputFormat == "json" {
		return printJSON(stats)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sessions:   %d (%d open)\n", stats.Sessions, stats.OpenSessions)
	fmt.Fprintf(cmd.OutOrStdout(), "Messages:   %d\n", stats.Messages)
	fmt.Fprintf(cmd.OutOrStdout(), "Facts:      %d\n", stats.Facts)
	fmt.Fprintf(cmd.OutOrStdout(), "File size:  %d bytes\n", stats.FileBytes)
	fmt.Fprintf(cmd.OutOrStdout(), "Schema:     %s\n", stats.SchemaVersion)
	fmt.Fprintf(cmd.OutOrStdout(), "Encryption: %s\n", stats.EncryptionMode)
	fmt.Fprintf(cmd.OutOrStdout(), "Integrity:  %s (checked %s)\n", stats.IntegrityResult, stats.IntegrityCheckedAt)
	return nil
}
