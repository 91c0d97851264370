package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/convert"
	"github.com/mirrordocs/manualmirror/internal/log"
)

// NewConvertCmd creates the convert command.
func NewConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <capture-dir>",
		Short: "Convert MHTML captures to standalone HTML or plain text",
		Long: `Convert unpacks every .mhtml capture in the directory into a standalone
HTML file with its images extracted alongside, or into plain text.
Converted files are written next to the captures.

Portal links inside the pages are rewritten to the flattened local
filenames the capture variant produces, so converted pages link to each
other offline.

Examples:
  # Convert all captures in a directory to HTML
  manualmirror convert ./captures

  # Plain-text extraction instead
  manualmirror convert ./captures --format text`,
		Args: cobra.ExactArgs(1),
		RunE: runConvertCmd,
	}

	cmd.Flags().StringP("format", "f", string(convert.FormatHTML),
		"Output format: html or text")
	cmd.Flags().IntP("workers", "w", runtime.NumCPU(),
		"Concurrent conversions")
	cmd.Flags().String("pages-prefix", config.DefaultBaseURL+config.DefaultPagesPath,
		"URL prefix of portal pages, used to rewrite cross-page links")

	return cmd
}

// runConvertCmd executes the convert command.
func runConvertCmd(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if info, err := os.Stat(dir); err != nil {
		return fmt.Errorf("cannot open capture directory: %w", err)
	} else if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	formatFlag, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format := convert.Format(formatFlag)
	if format != convert.FormatHTML && format != convert.FormatText {
		return fmt.Errorf("unknown format %q (want html or text)", formatFlag)
	}

	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}

	pagesPrefix, err := cmd.Flags().GetString("pages-prefix")
	if err != nil {
		return err
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	converter := convert.NewConverter(pagesPrefix, convert.WithLogger(logger))
	count, err := converter.BatchConvert(cmd.Context(), dir, format, workers)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d capture(s) in %s\n", count, dir)
	return nil
}
