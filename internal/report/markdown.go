package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFailures(md, report)
	w.writeBrokenLinks(md, report)
	w.writeSavedPages(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Manual Mirror Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + report.RunID + "`"},
			{"Variant", report.Variant},
			{"Scope Policy", report.ScopePolicy},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", report.Duration().String()},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.RunReport) string {
	if report.Aborted {
		return "⚠️ Aborted (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"✅ Saved", strconv.Itoa(report.SavedCount())},
			{"❌ Failed", strconv.Itoa(report.FailedCount())},
			{"⏭️ Skipped", strconv.Itoa(report.Skipped)},
		},
	})
	md.PlainText("")
}

// writeFailures writes the failed pages table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{"`" + f.URL + "`", f.Reason})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeBrokenLinks writes the broken local links found by the link check.
func (w *MarkdownWriter) writeBrokenLinks(md *markdown.Markdown, report *model.RunReport) {
	if len(report.BrokenLinks) == 0 {
		return
	}

	md.H2("Broken Local Links")
	md.PlainText("")
	md.BulletList(report.BrokenLinks...)
	md.PlainText("")
}

// writeSavedPages writes the saved pages table.
func (w *MarkdownWriter) writeSavedPages(md *markdown.Markdown, report *model.RunReport) {
	if report.SavedCount() == 0 {
		return
	}

	md.H2("Saved Pages")
	md.PlainText("")

	rows := make([][]string, 0, report.SavedCount())
	for _, r := range report.Results {
		if r.Status != model.StatusSaved {
			continue
		}
		rows = append(rows, []string{"`" + r.URL + "`", "`" + r.LocalPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Local Path"},
		Rows:   rows,
	})
}
