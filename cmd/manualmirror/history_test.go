package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mirrordocs/manualmirror/internal/database"
	"github.com/mirrordocs/manualmirror/internal/model"
)

// seedHistoryDB creates a history database with one stored run and returns
// its directory and run ID.
func seedHistoryDB(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	report := model.NewRunReport("mirror", "subpages")
	report.Add(model.PageResult{
		URL:       "https://bid3.afry.com/pages/user-manual/inputs.html",
		Category:  "user-manual",
		LocalPath: "user-manual/inputs.html",
		Status:    model.StatusSaved,
		Hash:      "deadbeefdeadbeef",
	})
	report.Finish()

	if err := db.SaveRun(context.Background(), report); err != nil {
		t.Fatal(err)
	}
	return dir, report.RunID
}

// TestRunHistoryCmd tests the history command execution.
func TestRunHistoryCmd(t *testing.T) {
	t.Run("lists stored runs", func(t *testing.T) {
		dir, runID := seedHistoryDB(t)

		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), runID) {
			t.Errorf("expected run %s in output, got %q", runID, out.String())
		}
	})

	t.Run("shows pages of a run", func(t *testing.T) {
		dir, runID := seedHistoryDB(t)

		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", dir, "--pages", runID})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "user-manual/inputs.html") {
			t.Errorf("expected page path in output, got %q", out.String())
		}
	})

	t.Run("shows page history", func(t *testing.T) {
		dir, _ := seedHistoryDB(t)

		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{
			"--db-dir", dir,
			"--url", "https://bid3.afry.com/pages/user-manual/inputs.html",
		})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out.String(), "deadbeefdead") {
			t.Errorf("expected content hash in output, got %q", out.String())
		}
	})

	t.Run("deletes a run", func(t *testing.T) {
		dir, runID := seedHistoryDB(t)

		cmd := NewHistoryCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--db-dir", dir, "--delete", runID})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// A second listing must come back empty.
		list := NewHistoryCmd()
		var listOut bytes.Buffer
		list.SetOut(&listOut)
		list.SetArgs([]string{"--db-dir", dir})

		if err := list.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(listOut.String(), "No runs recorded") {
			t.Errorf("expected empty history, got %q", listOut.String())
		}
	})

	t.Run("missing database fails", func(t *testing.T) {
		cmd := NewHistoryCmd()
		cmd.SetOut(bytes.NewBuffer(nil))
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error when no database exists")
		}
	})
}
