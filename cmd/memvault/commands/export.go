// ABOUTME: CLI command for exporting memory to a file or stdout
// ABOUTME: Decrypted, user-initiated export; never-share facts stay excluded
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/storage/sqlite"
)

var (
	exportOut       string
	exportAllowHigh bool
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export identity, facts, and sessions",
		Long: `Export memory as structured data. The extension of --out picks the
format: .json for JSON, anything else for YAML. Without --out the
export is printed as JSON.

Facts marked never-share are excluded from every export.

Examples:
  memvault export
  memvault export --out memory.yaml
  memvault export --out memory.json --allow-high-sensitivity`,
		RunE: runExport,
	}

	cmd.Flags().StringVar(&exportOut, "out", "", "Destination file")
	cmd.Flags().BoolVar(&exportAllowHigh, "allow-high-sensitivity", false, "Include sensitivity-3 facts")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.Export(ctx, gateway.ExportParams{AllowHighSensitivity: exportAllowHigh}))
	if err != nil {
		return err
	}
	export := data.(*sqlite.ExportData)

	if exportOut == "" {
		return printJSON(export)
	}
	if err := export.WriteFile(exportOut); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d facts and %d sessions to %s\n",
			len(export.Facts), len(export.Sessions), exportOut)
	}
	return nil
}
