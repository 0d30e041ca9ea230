// ABOUTME: CLI command for encrypted database snapshots
// ABOUTME: Writes a consistent copy of the store file to a new path
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
)

// NewBackupCmd creates the backup command
func NewBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [destination]",
		Short: "Snapshot the encrypted database",
		Long: `Write a consistent point-in-time copy of the database file. The
copy stays encrypted; restoring it on another machine requires this
machine's root key.

Examples:
  memvault backup ~/backups/memvault-2026-09-01.db`,
		Args: cobra.ExactArgs(1),
		RunE: runBackup,
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := unwrap(gw.Backup(ctx, gateway.BackupParams{Path: args[0]})); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
	}
	return nil
}
