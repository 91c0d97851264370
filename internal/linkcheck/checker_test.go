package linkcheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()

	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCheckerCleanMirror(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "user-manual/inputs.html",
		`<html><body>
			<a href="outputs.html">Outputs</a>
			<a href="inputs/demand.html#section">Demand</a>
			<img src="../_assets/static/logo.png">
			<a href="https://example.com/external.html">External</a>
			<a href="#top">Top</a>
		</body></html>`)
	writeFile(t, dir, "user-manual/outputs.html", `<html></html>`)
	writeFile(t, dir, "user-manual/inputs/demand.html", `<html></html>`)
	writeFile(t, dir, "_assets/static/logo.png", "png")

	broken, err := NewChecker(dir).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broken) != 0 {
		t.Errorf("expected no broken links, got %v", broken)
	}
}

func TestCheckerReportsMissingTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "user-manual/inputs.html",
		`<html><body>
			<a href="missing.html">Missing</a>
			<img src="figures/gone.png">
		</body></html>`)

	broken, err := NewChecker(dir).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broken) != 2 {
		t.Fatalf("expected 2 broken references, got %d: %v", len(broken), broken)
	}
	for _, b := range broken {
		if !strings.HasPrefix(b, "user-manual/inputs.html: ") {
			t.Errorf("broken reference %q should name the source file", b)
		}
	}
}

func TestCheckerFlagsAbsolutePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html",
		`<html><body><a href="/pages/user-manual/inputs.html">Inputs</a></body></html>`)

	broken, err := NewChecker(dir).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broken) != 1 {
		t.Errorf("absolute path references must be flagged, got %v", broken)
	}
}

func TestCheckerFlagsEscapingReferences(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html",
		`<html><body><a href="../outside.html">Outside</a></body></html>`)

	broken, err := NewChecker(dir).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broken) != 1 {
		t.Errorf("references above the mirror root must be flagged, got %v", broken)
	}
}

func TestCheckerStripsQueryStrings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "index.html",
		`<html><body><a href="page.html?version=2">Page</a></body></html>`)
	writeFile(t, dir, "page.html", `<html></html>`)

	broken, err := NewChecker(dir).Check()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(broken) != 0 {
		t.Errorf("query strings must be stripped before resolving, got %v", broken)
	}
}
