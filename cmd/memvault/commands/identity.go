// ABOUTME: CLI commands for the local identity record
// ABOUTME: Shows the identity and sets its display name
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakhaven/memvault/internal/gateway"
	"github.com/oakhaven/memvault/internal/models"
)

// NewIdentityCmd creates the identity command group
func NewIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Show or update the local identity",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the identity record",
		RunE:  runIdentityShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-name [name]",
		Short: "Set the display name",
		Args:  cobra.ExactArgs(1),
		RunE:  runIdentitySetName,
	})

	return cmd
}

func runIdentityShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := unwrap(gw.GetIdentity(ctx))
	if err != nil {
		return err
	}
	if outputFormat == "json" {
		return printJSON(data)
	}

	identity := data.(*models.Identity)
	name := identity.DisplayName
	if name == "" {
		name = "(unset)"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ID:      %s\n", identity.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Name:    %s\n", name)
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", formatTime(identity.CreatedAt))
	return nil
}

func runIdentitySetName(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, closeStore, err := openGateway(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := unwrap(gw.SetDisplayName(ctx, gateway.SetDisplayNameParams{Name: args[0]})); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Display name updated")
	}
	return nil
}
