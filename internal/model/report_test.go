package model

import (
	"testing"
)

func TestRunReportCounts(t *testing.T) {
	t.Parallel()

	r := NewRunReport("mirror", "subpages")
	if r.RunID == "" {
		t.Fatal("expected a run ID")
	}

	r.Add(PageResult{URL: "https://example.com/pages/m/a.html", Status: StatusSaved})
	r.Add(PageResult{URL: "https://example.com/pages/m/b.html", Status: StatusSaved})
	r.Add(PageResult{URL: "https://example.com/pages/m/c.html", Status: StatusFailed, Reason: "HTTP 404"})
	r.AddSkipped()
	r.AddSkipped()
	r.Finish()

	if got := r.SavedCount(); got != 2 {
		t.Errorf("expected 2 saved, got %d", got)
	}
	if got := r.FailedCount(); got != 1 {
		t.Errorf("expected 1 failed, got %d", got)
	}
	if r.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", r.Skipped)
	}

	failures := r.Failures()
	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].Reason != "HTTP 404" {
		t.Errorf("unexpected failure reason %q", failures[0].Reason)
	}

	if r.Duration() < 0 {
		t.Error("duration must not be negative")
	}
}

func TestRunReportUniqueRunIDs(t *testing.T) {
	t.Parallel()

	a := NewRunReport("capture", "subpages")
	b := NewRunReport("capture", "subpages")
	if a.RunID == b.RunID {
		t.Errorf("expected distinct run IDs, both were %q", a.RunID)
	}
}

func TestFetchResultHash(t *testing.T) {
	t.Parallel()

	f := &FetchResult{Body: []byte("<html></html>")}
	f.ComputeHash()
	if len(f.Hash) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(f.Hash))
	}

	g := &FetchResult{Body: []byte("<html></html>")}
	g.ComputeHash()
	if f.Hash != g.Hash {
		t.Error("identical bodies must hash identically")
	}
}

func TestFetchResultIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html; charset=utf-8", true},
		{"Text/HTML", true},
		{"multipart/related", false},
		{"image/png", false},
		{"", false},
	}

	for _, tt := range tests {
		f := &FetchResult{ContentType: tt.contentType}
		if got := f.IsHTML(); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
