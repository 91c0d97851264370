package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestFlatName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pageURL  string
		category string
		want     string
	}{
		{
			name:     "nested page",
			pageURL:  "https://bid3.afry.com/pages/user-manual/inputs/standing-data.html",
			category: "user-manual",
			want:     "user-manual_inputs_standing-data.mhtml",
		},
		{
			name:     "top level page",
			pageURL:  "https://bid3.afry.com/pages/user-manual/inputs.html",
			category: "user-manual",
			want:     "user-manual_inputs.mhtml",
		},
		{
			name:     "category prefix added when path lacks it",
			pageURL:  "https://bid3.afry.com/pages/dispatch/overview.html",
			category: "technical-manual",
			want:     "technical-manual_dispatch_overview.mhtml",
		},
		{
			name:     "unsafe characters sanitized",
			pageURL:  "https://bid3.afry.com/pages/m/what%3Fis%3Athis.html",
			category: "m",
			want:     "m_what-is-this.mhtml",
		},
		{
			name:     "underscore in segment becomes hyphen",
			pageURL:  "https://bid3.afry.com/pages/user-manual/b_c.html",
			category: "user-manual",
			want:     "user-manual_b-c.mhtml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := FlatName(tt.pageURL, tt.category, "/pages/")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FlatName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFlatNameNoCollisions(t *testing.T) {
	t.Parallel()

	// A slash boundary and an underscore inside a segment must flatten to
	// different names.
	a, err := FlatName("https://bid3.afry.com/pages/user-manual/b_c.html", "user-manual", "/pages/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := FlatName("https://bid3.afry.com/pages/user-manual/b/c.html", "user-manual", "/pages/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Errorf("distinct URLs must not share a flat name, both got %q", a)
	}
}

func TestFlatNameEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := FlatName("https://bid3.afry.com/pages/", "m", "/pages/"); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
}

func TestMirrorPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pageURL string
		want    string
	}{
		{
			name:    "nested page keeps layout",
			pageURL: "https://bid3.afry.com/pages/user-manual/inputs/demand.html",
			want:    "user-manual/inputs/demand.html",
		},
		{
			name:    "directory URL gets index",
			pageURL: "https://bid3.afry.com/pages/user-manual/",
			want:    "user-manual/index.html",
		},
		{
			name:    "pages root gets index",
			pageURL: "https://bid3.afry.com/pages/",
			want:    "index.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := MirrorPath(tt.pageURL, "/pages/")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MirrorPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMirrorPathRejectsTraversal(t *testing.T) {
	t.Parallel()

	_, err := MirrorPath("https://bid3.afry.com/pages/../../etc/passwd.html", "/pages/")
	if !errors.Is(err, ErrPathEscapes) {
		t.Errorf("expected ErrPathEscapes, got %v", err)
	}
}

func TestAssetPath(t *testing.T) {
	t.Parallel()

	got, err := AssetPath("https://bid3.afry.com/static/site.css")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "_assets/static/site.css" {
		t.Errorf("AssetPath() = %q", got)
	}
}

func TestAssetPathQueryVariants(t *testing.T) {
	t.Parallel()

	a, err := AssetPath("https://bid3.afry.com/static/site.css?v=1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := AssetPath("https://bid3.afry.com/static/site.css?v=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Errorf("different query strings must map to different paths, both got %q", a)
	}
	for _, p := range []string{a, b} {
		if !strings.HasPrefix(p, "_assets/static/site.") || !strings.HasSuffix(p, ".css") {
			t.Errorf("unexpected asset path %q", p)
		}
	}
}

func TestRelativeRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from string
		to   string
		want string
	}{
		{
			name: "same directory",
			from: "user-manual/inputs.html",
			to:   "user-manual/outputs.html",
			want: "outputs.html",
		},
		{
			name: "into subdirectory",
			from: "user-manual/inputs.html",
			to:   "user-manual/inputs/demand.html",
			want: "inputs/demand.html",
		},
		{
			name: "up and across",
			from: "user-manual/inputs/demand.html",
			to:   "_assets/static/site.css",
			want: "../../_assets/static/site.css",
		},
		{
			name: "from root file",
			from: "index.html",
			to:   "_assets/static/site.css",
			want: "_assets/static/site.css",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := relativeRef(tt.from, tt.to); got != tt.want {
				t.Errorf("relativeRef(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
