package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for manualmirror.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manualmirror",
		Short: "Mirror an authenticated vendor manual portal for offline use",
		Long: `manualmirror logs into a vendor manual portal, crawls a scoped set of
manual chapters, and saves them for offline use.

Two output variants are supported:
  mirror   rebuild the site's directory structure locally with assets and
           rewritten links, navigable in any browser (default)
  capture  save each page as a single flattened MHTML snapshot

Credentials are read from the MANUALMIRROR_USERNAME and
MANUALMIRROR_PASSWORD environment variables.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewMirrorCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewConvertCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
