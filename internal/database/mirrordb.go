package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mirrordocs/manualmirror/internal/model"
)

// MirrorDB stores run history and per-page outcomes in SQLite.
// It manages connection pooling and provides methods for CRUD operations.
type MirrorDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures MirrorDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a MirrorDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned instead of creating an empty history.
func Open(dbDir string, opts Options) (*MirrorDB, error) {
	dbPath := filepath.Join(dbDir, "manualmirror.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files, mode=rwc
	// allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	mdb := &MirrorDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := mdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return mdb, nil
}

// Close closes the database connection.
func (mdb *MirrorDB) Close() error {
	return mdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (mdb *MirrorDB) createTables() error {
	schema := `
	-- Runs store one row per mirror execution
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		scope_policy TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		saved INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		skipped INTEGER NOT NULL,
		aborted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store per-page outcomes for each run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		url TEXT NOT NULL,
		category TEXT NOT NULL,
		local_path TEXT,
		status TEXT NOT NULL,
		reason TEXT,
		hash TEXT,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := mdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists a finished run and all its page outcomes in one
// transaction.
func (mdb *MirrorDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	tx, err := mdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, variant, scope_policy, started_at, finished_at, saved, failed, skipped, aborted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RunID,
		report.Variant,
		report.ScopePolicy,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.FinishedAt.UTC().Format(time.RFC3339),
		report.SavedCount(),
		report.FailedCount(),
		report.Skipped,
		boolToInt(report.Aborted),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, url, category, local_path, status, reason, hash)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, page := range report.Results {
		_, err := stmt.ExecContext(ctx,
			report.RunID,
			page.URL,
			page.Category,
			page.LocalPath,
			string(page.Status),
			page.Reason,
			page.Hash,
		)
		if err != nil {
			return fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
	}

	return tx.Commit()
}

// RunSummary contains summary information about a stored run.
// This is used for displaying run history without loading every page row.
type RunSummary struct {
	// RunID is the unique identifier of the run.
	RunID string

	// Variant is the crawl mode the run used.
	Variant string

	// ScopePolicy is the scope-root policy the run used.
	ScopePolicy string

	// StartedAt and FinishedAt bound the run's execution.
	StartedAt  time.Time
	FinishedAt time.Time

	// Saved, Failed, and Skipped are the run's outcome counts.
	Saved   int
	Failed  int
	Skipped int

	// Aborted reports whether the run stopped early.
	Aborted bool
}

// ListRuns returns stored runs, newest first.
func (mdb *MirrorDB) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := mdb.db.QueryContext(ctx, `
	SELECT run_id, variant, scope_policy, started_at, finished_at, saved, failed, skipped, aborted
	FROM runs
	ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunSummary
	for rows.Next() {
		var run RunSummary
		var startedAt, finishedAt string
		var aborted int

		err := rows.Scan(
			&run.RunID,
			&run.Variant,
			&run.ScopePolicy,
			&startedAt,
			&finishedAt,
			&run.Saved,
			&run.Failed,
			&run.Skipped,
			&aborted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.StartedAt = parseTimestamp(startedAt)
		run.FinishedAt = parseTimestamp(finishedAt)
		run.Aborted = aborted != 0
		results = append(results, run)
	}

	return results, rows.Err()
}

// PagesForRun returns the per-page outcomes of one run in insertion order.
func (mdb *MirrorDB) PagesForRun(ctx context.Context, runID string) ([]model.PageResult, error) {
	rows, err := mdb.db.QueryContext(ctx, `
	SELECT url, category, local_path, status, reason, hash
	FROM pages
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var results []model.PageResult
	for rows.Next() {
		var page model.PageResult
		var status string
		var localPath, reason, hash sql.NullString

		if err := rows.Scan(&page.URL, &page.Category, &localPath, &status, &reason, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		page.LocalPath = localPath.String
		page.Status = model.Status(status)
		page.Reason = reason.String
		page.Hash = hash.String
		results = append(results, page)
	}

	return results, rows.Err()
}

// LatestRun returns the most recent run, or nil when the history is empty.
func (mdb *MirrorDB) LatestRun(ctx context.Context) (*RunSummary, error) {
	runs, err := mdb.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// PageHistory returns every stored outcome for one URL across runs, newest
// run first, so content or availability changes can be tracked over time.
func (mdb *MirrorDB) PageHistory(ctx context.Context, pageURL string) ([]model.PageResult, error) {
	rows, err := mdb.db.QueryContext(ctx, `
	SELECT p.url, p.category, p.local_path, p.status, p.reason, p.hash
	FROM pages p
	JOIN runs r ON r.run_id = p.run_id
	WHERE p.url = ?
	ORDER BY r.started_at DESC
	`, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to query page history: %w", err)
	}
	defer rows.Close()

	var results []model.PageResult
	for rows.Next() {
		var page model.PageResult
		var status string
		var localPath, reason, hash sql.NullString

		if err := rows.Scan(&page.URL, &page.Category, &localPath, &status, &reason, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		page.LocalPath = localPath.String
		page.Status = model.Status(status)
		page.Reason = reason.String
		page.Hash = hash.String
		results = append(results, page)
	}

	return results, rows.Err()
}

// DeleteRun removes a run and its page rows.
func (mdb *MirrorDB) DeleteRun(ctx context.Context, runID string) error {
	tx, err := mdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
	}

	return tx.Commit()
}

// ErrRunNotFound is returned when a run ID is absent from the history.
var ErrRunNotFound = errors.New("run not found")

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
