package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mirrordocs/manualmirror/internal/linkcheck"
	"github.com/mirrordocs/manualmirror/internal/log"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <mirror-dir>",
		Short: "Validate offline navigation of a mirrored site",
		Long: `Check walks every HTML file below the mirror directory and verifies
that each relative link and asset reference resolves to a file inside
the mirror. Absolute paths and references that escape the mirror root
are reported as broken.

Examples:
  # Validate a mirror written by the mirror command
  manualmirror check ./manuals`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("cannot open mirror directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	checker := linkcheck.NewChecker(dir, linkcheck.WithLogger(logger))
	broken, err := checker.Check()
	if err != nil {
		return fmt.Errorf("link check failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(broken) == 0 {
		fmt.Fprintln(out, "No broken references found.")
		return nil
	}

	for _, ref := range broken {
		fmt.Fprintln(out, ref)
	}
	return fmt.Errorf("%d broken reference(s) found", len(broken))
}
