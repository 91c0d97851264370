package model

import (
	"time"

	"github.com/google/uuid"
)

// Status describes the terminal state of a crawl task.
type Status string

// Task terminal states. A task that enters the queue ends in exactly one
// of these; terminal states never re-enter the queue.
const (
	// StatusSaved means the page was fetched and persisted.
	StatusSaved Status = "saved"

	// StatusFailed means the page could not be fetched or written after
	// the configured retries.
	StatusFailed Status = "failed"
)

// PageResult records the outcome of a single crawl task.
type PageResult struct {
	// URL is the canonical URL of the page.
	URL string `json:"url"`

	// Category is the manual-category label inherited from the seed.
	Category string `json:"category"`

	// LocalPath is the output file the page was written to.
	// Empty for failed tasks.
	LocalPath string `json:"local_path,omitempty"`

	// Status is the terminal state of the task.
	Status Status `json:"status"`

	// Reason describes why a task failed. Empty for saved tasks.
	Reason string `json:"reason,omitempty"`

	// Hash is the SHA-256 digest of the persisted content.
	Hash string `json:"hash,omitempty"`
}

// RunReport accumulates the results of a whole crawl run.
// It is owned by the crawl engine while the run executes and read-only
// afterwards; report writers and the history database consume it.
type RunReport struct {
	// RunID uniquely identifies this run in the history database.
	RunID string `json:"run_id"`

	// Variant is the crawl mode, "capture" or "mirror".
	Variant string `json:"variant"`

	// ScopePolicy is the scope-root policy used, "subpages" or "siblings".
	ScopePolicy string `json:"scope_policy"`

	// StartedAt and FinishedAt bound the run's execution.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Results holds one entry per processed task, in completion order.
	Results []PageResult `json:"results"`

	// Skipped counts discovered links that were suppressed because their
	// canonical URL was already visited or queued.
	Skipped int `json:"skipped"`

	// BrokenLinks lists offline-navigation problems found by the
	// post-crawl link check, formatted as "file: reference".
	BrokenLinks []string `json:"broken_links,omitempty"`

	// Aborted is set when the run stopped early (cancellation or too many
	// consecutive failures). Partial results remain valid.
	Aborted bool `json:"aborted,omitempty"`
}

// NewRunReport creates a report for a fresh run.
func NewRunReport(variant, scopePolicy string) *RunReport {
	return &RunReport{
		RunID:       uuid.NewString(),
		Variant:     variant,
		ScopePolicy: scopePolicy,
		StartedAt:   time.Now(),
		Results:     make([]PageResult, 0),
	}
}

// Add appends a task result.
func (r *RunReport) Add(result PageResult) {
	r.Results = append(r.Results, result)
}

// AddSkipped counts one suppressed duplicate discovery.
func (r *RunReport) AddSkipped() {
	r.Skipped++
}

// Finish stamps the end time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// SavedCount returns the number of pages persisted.
func (r *RunReport) SavedCount() int {
	return r.countStatus(StatusSaved)
}

// FailedCount returns the number of tasks that ended in failure.
func (r *RunReport) FailedCount() int {
	return r.countStatus(StatusFailed)
}

// Failures returns the failed task results, preserving completion order.
func (r *RunReport) Failures() []PageResult {
	failures := make([]PageResult, 0)
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			failures = append(failures, res)
		}
	}
	return failures
}

// Duration returns the wall-clock duration of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunReport) countStatus(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}
