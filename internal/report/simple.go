package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose lists every saved page instead of just the counts.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output listing every saved page.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeFailures(&sb, report)
	w.writeBrokenLinks(&sb, report)
	if w.verbose {
		w.writeSavedPages(&sb, report)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       MANUAL MIRROR REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Run ID:       %s\n", report.RunID))
	sb.WriteString(fmt.Sprintf("Variant:      %s\n", report.Variant))
	sb.WriteString(fmt.Sprintf("Scope Policy: %s\n", report.ScopePolicy))
	sb.WriteString(fmt.Sprintf("Started:      %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:     %s\n", report.Duration().Round(time.Millisecond)))

	if report.Aborted {
		sb.WriteString("Status:       ABORTED (partial results)\n")
	} else {
		sb.WriteString("Status:       Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the outcome summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  SAVED:    %d\n", report.SavedCount()))
	sb.WriteString(fmt.Sprintf("  FAILED:   %d\n", report.FailedCount()))
	sb.WriteString(fmt.Sprintf("  SKIPPED:  %d (already visited)\n", report.Skipped))
	sb.WriteString("\n")
}

// writeFailures lists every failed page with its reason.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILURES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, f := range failures {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", f.URL))
		sb.WriteString(fmt.Sprintf("      Reason: %s\n", f.Reason))
	}
	sb.WriteString("\n")
}

// writeBrokenLinks lists offline-navigation problems found by the link
// check.
func (w *SimpleWriter) writeBrokenLinks(sb *strings.Builder, report *model.RunReport) {
	if len(report.BrokenLinks) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("BROKEN LOCAL LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, link := range report.BrokenLinks {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", link))
	}
	sb.WriteString("\n")
}

// writeSavedPages lists every saved page with its local path.
func (w *SimpleWriter) writeSavedPages(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SAVED PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, r := range report.Results {
		if r.Status != model.StatusSaved {
			continue
		}
		sb.WriteString(fmt.Sprintf("  [+] %s\n", r.URL))
		sb.WriteString(fmt.Sprintf("      -> %s\n", r.LocalPath))
	}
	sb.WriteString("\n")
}
