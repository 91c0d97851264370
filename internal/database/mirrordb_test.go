package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mirrordocs/manualmirror/internal/model"
)

func testReport(t *testing.T) *model.RunReport {
	t.Helper()

	report := model.NewRunReport("capture", "subpages")
	report.Add(model.PageResult{
		URL:       "https://bid3.afry.com/pages/user-manual/inputs.html",
		Category:  "user-manual",
		LocalPath: "user-manual_inputs.mhtml",
		Status:    model.StatusSaved,
		Hash:      "deadbeef",
	})
	report.Add(model.PageResult{
		URL:      "https://bid3.afry.com/pages/user-manual/gone.html",
		Category: "user-manual",
		Status:   model.StatusFailed,
		Reason:   "HTTP 404",
	})
	report.AddSkipped()
	report.Finish()
	return report
}

func TestSaveAndListRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	report := testReport(t)
	if err := db.SaveRun(ctx, report); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.RunID != report.RunID {
		t.Errorf("run ID = %q, want %q", run.RunID, report.RunID)
	}
	if run.Variant != "capture" || run.ScopePolicy != "subpages" {
		t.Errorf("unexpected run metadata: %+v", run)
	}
	if run.Saved != 1 || run.Failed != 1 || run.Skipped != 1 {
		t.Errorf("unexpected counts: saved=%d failed=%d skipped=%d", run.Saved, run.Failed, run.Skipped)
	}
	if run.StartedAt.IsZero() {
		t.Error("start time not round-tripped")
	}
}

func TestPagesForRun(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	report := testReport(t)
	if err := db.SaveRun(ctx, report); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	pages, err := db.PagesForRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("loading pages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(pages))
	}

	if pages[0].Status != model.StatusSaved || pages[0].Hash != "deadbeef" {
		t.Errorf("unexpected first page: %+v", pages[0])
	}
	if pages[1].Status != model.StatusFailed || pages[1].Reason != "HTTP 404" {
		t.Errorf("unexpected second page: %+v", pages[1])
	}
}

func TestPageHistoryAcrossRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	const pageURL = "https://bid3.afry.com/pages/m/a.html"

	for i, hash := range []string{"hash1", "hash2"} {
		report := model.NewRunReport("mirror", "subpages")
		report.StartedAt = time.Now().Add(time.Duration(i) * time.Minute)
		report.Add(model.PageResult{
			URL:      pageURL,
			Category: "m",
			Status:   model.StatusSaved,
			Hash:     hash,
		})
		report.Finish()
		if err := db.SaveRun(ctx, report); err != nil {
			t.Fatalf("saving run %d: %v", i, err)
		}
	}

	history, err := db.PageHistory(ctx, pageURL)
	if err != nil {
		t.Fatalf("loading history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Hash != "hash2" {
		t.Errorf("history must be newest first, got %q", history[0].Hash)
	}
}

func TestDeleteRun(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	report := testReport(t)
	if err := db.SaveRun(ctx, report); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	if err := db.DeleteRun(ctx, report.RunID); err != nil {
		t.Fatalf("deleting run: %v", err)
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("listing runs: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs after delete, got %d", len(runs))
	}

	if err := db.DeleteRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Error("expected an error for a missing database")
	}
}
