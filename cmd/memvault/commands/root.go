// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: All subcommands talk to the store through the policy gateway
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
███╗   ███╗███████╗███╗   ███╗██╗   ██╗ █████╗ ██╗   ██╗██╗  ████████╗
████╗ ████║██╔════╝████╗ ████║██║   ██║██╔══██╗██║   ██║██║  ╚══██╔══╝
██╔████╔██║█████╗  ██╔████╔██║██║   ██║███████║██║   ██║██║     ██║
██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║╚██╗ ██╔╝██╔══██║██║   ██║██║     ██║
██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║ ╚████╔╝ ██║  ██║╚██████╔╝███████╗██║
╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝  ╚═══╝  ╚═╝  ╚═╝ ╚═════╝ ╚══════╝╚═╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memvault",
		Short: "Encrypted local memory for conversational assistants",
		Long: banner + `
memvault keeps an assistant's long-term memory on this device: sessions,
messages, and facts, encrypted at rest with a key held in the OS keychain.

The context command selects the most relevant memory for a goal and packs
it into a token budget.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, json, or text")

	cmd.AddCommand(NewIdentityCmd())
	cmd.AddCommand(NewSessionCmd())
	cmd.AddCommand(NewMessageCmd())
	cmd.AddCommand(NewFactCmd())
	cmd.AddCommand(NewContextCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewBackupCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
