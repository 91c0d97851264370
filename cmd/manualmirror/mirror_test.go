package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mirrordocs/manualmirror/internal/config"
	"github.com/mirrordocs/manualmirror/internal/scope"
)

// TestNewMirrorCmd tests the mirror command creation.
func TestNewMirrorCmd(t *testing.T) {
	t.Parallel()

	cmd := NewMirrorCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "mirror" {
			t.Errorf("expected use 'mirror', got %q", cmd.Use)
		}
	})

	t.Run("has variant flag with mirror default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("variant")
		if flag == nil {
			t.Fatal("expected variant flag")
		}
		if flag.DefValue != config.VariantMirror {
			t.Errorf("expected default %q, got %q", config.VariantMirror, flag.DefValue)
		}
	})

	t.Run("has scope flag with subpages default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("scope")
		if flag == nil {
			t.Fatal("expected scope flag")
		}
		if flag.DefValue != string(scope.PolicySubpages) {
			t.Errorf("expected default %q, got %q", scope.PolicySubpages, flag.DefValue)
		}
	})

	t.Run("has no credential flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"username", "password", "user", "pass"} {
			if cmd.Flags().Lookup(name) != nil {
				t.Errorf("credentials must not be flags, found --%s", name)
			}
		}
	})
}

// TestBuildMirrorConfig tests flag-to-config mapping.
func TestBuildMirrorConfig(t *testing.T) {
	t.Setenv(config.EnvUsername, "alice")
	t.Setenv(config.EnvPassword, "secret")

	cmd := NewMirrorCmd()
	if err := cmd.ParseFlags([]string{
		"--seeds", "seeds.yaml",
		"--output", "./out",
		"--variant", "capture",
		"--scope", "siblings",
		"--no-db",
		"--headful",
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildMirrorConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SeedFile != "seeds.yaml" {
		t.Errorf("unexpected seed file %q", cfg.SeedFile)
	}
	if cfg.Variant != config.VariantCapture {
		t.Errorf("unexpected variant %q", cfg.Variant)
	}
	if cfg.ScopePolicy != scope.PolicySiblings {
		t.Errorf("unexpected scope policy %q", cfg.ScopePolicy)
	}
	if cfg.SaveToDB {
		t.Error("--no-db must disable the history database")
	}
	if cfg.Headless {
		t.Error("--headful must disable headless mode")
	}
	if cfg.Username != "alice" || cfg.Password != "secret" {
		t.Error("credentials must come from the environment")
	}
}

// TestBuildMirrorConfigRejectsBadScope tests scope flag validation.
func TestBuildMirrorConfigRejectsBadScope(t *testing.T) {
	t.Parallel()

	cmd := NewMirrorCmd()
	if err := cmd.ParseFlags([]string{"--scope", "everything"}); err != nil {
		t.Fatal(err)
	}

	if _, err := buildMirrorConfig(cmd); err == nil {
		t.Error("expected error for unknown scope policy")
	}
}

// TestMirrorCmdEndToEnd runs the full mirror command against a local server.
func TestMirrorCmdEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/pages/user-manual/inputs.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="inputs/demand.html">Demand</a></body></html>`))
		case "/pages/user-manual/inputs/demand.html":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body>demand</body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	seedFile := filepath.Join(dir, "seeds.yaml")
	seeds := "seeds:\n  - url: " + srv.URL + "/pages/user-manual/inputs.html\n    category: user-manual\n"
	if err := os.WriteFile(seedFile, []byte(seeds), 0o644); err != nil {
		t.Fatal(err)
	}
	outputDir := filepath.Join(dir, "manuals")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{
		"mirror",
		"--verbose",
		"--seeds", seedFile,
		"--output", outputDir,
		"--base-url", srv.URL,
		"--no-login",
		"--no-db",
		"--delay", "0s",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "user-manual", "inputs.html")); err != nil {
		t.Errorf("mirrored page missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "user-manual", "inputs", "demand.html")); err != nil {
		t.Errorf("mirrored subpage missing: %v", err)
	}
	if !strings.Contains(out.String(), "MANUAL MIRROR REPORT") {
		t.Errorf("expected report on stdout, got %q", out.String())
	}
}
