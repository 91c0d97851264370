package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/database"
	"github.com/mirrordocs/manualmirror/internal/model"
)

// NewHistoryCmd creates the history command.
// This command inspects past mirror runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past mirror runs",
		Long: `History lists mirror runs recorded in the run database, newest first.

Each mirror run stores one row per page with its terminal status and a
content hash, so the history answers when a page was last saved and
whether its content changed between runs.

Examples:
  # List all recorded runs
  manualmirror history

  # Show every page of a specific run
  manualmirror history --pages 4f3a1c20-...

  # Show how one page changed across runs
  manualmirror history --url https://bid3.afry.com/pages/user-manual/inputs.html

  # Delete a run and its pages
  manualmirror history --delete 4f3a1c20-...`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("pages", "", "Show the pages of the run with this ID")
	cmd.Flags().String("url", "", "Show the stored history of a single page URL")
	cmd.Flags().String("delete", "", "Delete the run with this ID and its pages")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Opening read-only intent: a history query must not create an empty
	// database just to report that it is empty.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if runID, err := cmd.Flags().GetString("delete"); err != nil {
		return err
	} else if runID != "" {
		return deleteRun(ctx, db, out, runID)
	}

	if runID, err := cmd.Flags().GetString("pages"); err != nil {
		return err
	} else if runID != "" {
		return listRunPages(ctx, db, out, runID)
	}

	if pageURL, err := cmd.Flags().GetString("url"); err != nil {
		return err
	} else if pageURL != "" {
		return listPageHistory(ctx, db, out, pageURL)
	}

	return listRuns(ctx, db, out)
}

// listRuns prints every stored run, newest first.
func listRuns(ctx context.Context, db *database.MirrorDB, out io.Writer) error {
	runs, err := db.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'manualmirror mirror' to record a run.")
		return nil
	}

	fmt.Fprintf(out, "Recorded runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %5s  %6s  %7s\n",
		"Run ID", "Started", "Variant", "Saved", "Failed", "Aborted")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 90))

	for _, run := range runs {
		aborted := ""
		if run.Aborted {
			aborted = "yes"
		}
		fmt.Fprintf(out, "  %-36s  %-19s  %-8s  %5d  %6d  %7s\n",
			run.RunID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Variant,
			run.Saved,
			run.Failed,
			aborted,
		)
	}

	fmt.Fprintln(out, "\nUse 'manualmirror history --pages <run-id>' to see a run's pages.")
	return nil
}

// listRunPages prints every page recorded for one run.
func listRunPages(ctx context.Context, db *database.MirrorDB, out io.Writer, runID string) error {
	pages, err := db.PagesForRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load pages: %w", err)
	}

	if len(pages) == 0 {
		fmt.Fprintf(out, "No pages recorded for run %s\n", runID)
		return nil
	}

	fmt.Fprintf(out, "Pages of run %s (%d):\n\n", runID, len(pages))
	for _, page := range pages {
		printPage(out, page)
	}
	return nil
}

// listPageHistory prints how one page changed across runs, newest first.
func listPageHistory(ctx context.Context, db *database.MirrorDB, out io.Writer, pageURL string) error {
	pages, err := db.PageHistory(ctx, pageURL)
	if err != nil {
		return fmt.Errorf("failed to load page history: %w", err)
	}

	if len(pages) == 0 {
		fmt.Fprintf(out, "No history recorded for %s\n", pageURL)
		return nil
	}

	fmt.Fprintf(out, "History of %s (%d runs):\n\n", pageURL, len(pages))
	for _, page := range pages {
		printPage(out, page)
	}
	return nil
}

// printPage prints a single page record.
func printPage(out io.Writer, page model.PageResult) {
	switch page.Status {
	case model.StatusSaved:
		hash := page.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(out, "  [saved]  %s\n           -> %s (sha256 %s)\n",
			page.URL, page.LocalPath, hash)
	default:
		fmt.Fprintf(out, "  [%s] %s\n           %s\n",
			page.Status, page.URL, page.Reason)
	}
}

// deleteRun removes one run and its pages from the history database.
func deleteRun(ctx context.Context, db *database.MirrorDB, out io.Writer, runID string) error {
	if err := db.DeleteRun(ctx, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	fmt.Fprintf(out, "Deleted run %s\n", runID)
	return nil
}
