package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mirrordocs/manualmirror/internal/model"
)

func TestCaptureSaverWritesFlatFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	saver := NewCaptureSaver(dir, "/pages/")

	page := &model.FetchResult{
		URL:  "https://bid3.afry.com/pages/user-manual/inputs/demand.html",
		Body: []byte("MIME-Version: 1.0\r\n\r\nsnapshot"),
	}

	rel, err := saver.Save(context.Background(), page, "user-manual")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel != "user-manual_inputs_demand.mhtml" {
		t.Errorf("unexpected relative path %q", rel)
	}

	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if string(data) != string(page.Body) {
		t.Error("saved content differs from the page body")
	}
}

// assetServer serves asset bytes from memory and counts fetches per URL.
type assetServer struct {
	mu      sync.Mutex
	assets  map[string][]byte
	fetches map[string]int
}

func newAssetServer(assets map[string][]byte) *assetServer {
	return &assetServer{assets: assets, fetches: make(map[string]int)}
}

func (a *assetServer) Fetch(_ context.Context, assetURL string) (*model.FetchResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fetches[assetURL]++

	body, ok := a.assets[assetURL]
	if !ok {
		return nil, os.ErrNotExist
	}
	return &model.FetchResult{URL: assetURL, StatusCode: 200, Body: body}, nil
}

func TestMirrorSaverLayoutAndRewriting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assets := newAssetServer(map[string][]byte{
		"https://bid3.afry.com/static/site.css":                       []byte("body{}"),
		"https://bid3.afry.com/pages/user-manual/figures/diagram.png": []byte{0x89, 'P', 'N', 'G'},
	})
	saver := NewMirrorSaver(dir, "/pages/", assets)

	page := &model.FetchResult{
		URL: "https://bid3.afry.com/pages/user-manual/inputs/demand.html",
		DOM: []byte(`<html><head>
			<link rel="stylesheet" href="/static/site.css">
		</head><body>
			<a href="/pages/user-manual/outputs.html">Outputs</a>
			<a href="https://example.com/external.html">External</a>
			<img src="../figures/diagram.png">
		</body></html>`),
	}

	rel, err := saver.Save(context.Background(), page, "user-manual")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rel != "user-manual/inputs/demand.html" {
		t.Fatalf("unexpected relative path %q", rel)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	saved := string(data)

	if !strings.Contains(saved, `href="../outputs.html"`) {
		t.Errorf("page link not rewritten to a relative path:\n%s", saved)
	}
	if !strings.Contains(saved, `href="../../_assets/static/site.css"`) {
		t.Errorf("stylesheet not rewritten:\n%s", saved)
	}
	if !strings.Contains(saved, `src="../../_assets/pages/user-manual/figures/diagram.png"`) {
		t.Errorf("image not rewritten:\n%s", saved)
	}
	if !strings.Contains(saved, `href="https://example.com/external.html"`) {
		t.Error("external link must be left untouched")
	}

	for _, assetRel := range []string{
		"_assets/static/site.css",
		"_assets/pages/user-manual/figures/diagram.png",
	} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(assetRel))); err != nil {
			t.Errorf("asset %s not written: %v", assetRel, err)
		}
	}
}

func TestMirrorSaverDownloadsAssetOnce(t *testing.T) {
	t.Parallel()

	const cssURL = "https://bid3.afry.com/static/site.css"

	dir := t.TempDir()
	assets := newAssetServer(map[string][]byte{cssURL: []byte("body{}")})
	saver := NewMirrorSaver(dir, "/pages/", assets)

	dom := []byte(`<html><head><link rel="stylesheet" href="/static/site.css"></head></html>`)
	for _, pageURL := range []string{
		"https://bid3.afry.com/pages/m/a.html",
		"https://bid3.afry.com/pages/m/b.html",
	} {
		page := &model.FetchResult{URL: pageURL, DOM: dom}
		if _, err := saver.Save(context.Background(), page, "m"); err != nil {
			t.Fatalf("saving %s: %v", pageURL, err)
		}
	}

	assets.mu.Lock()
	defer assets.mu.Unlock()
	if got := assets.fetches[cssURL]; got != 1 {
		t.Errorf("asset fetched %d times, want 1", got)
	}
}

func TestMirrorSaverRewritesStylesheetURLs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assets := newAssetServer(map[string][]byte{
		"https://bid3.afry.com/static/site.css": []byte(`body{background:url("bg.png")}h1{background:url(https://example.com/x.png)}`),
		"https://bid3.afry.com/static/bg.png":   []byte{0x89, 'P', 'N', 'G'},
	})
	saver := NewMirrorSaver(dir, "/pages/", assets)

	page := &model.FetchResult{
		URL: "https://bid3.afry.com/pages/m/a.html",
		DOM: []byte(`<html><head><link rel="stylesheet" href="/static/site.css"></head></html>`),
	}

	if _, err := saver.Save(context.Background(), page, "m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "_assets", "static", "site.css"))
	if err != nil {
		t.Fatalf("stylesheet not written: %v", err)
	}
	css := string(data)

	if !strings.Contains(css, "url(bg.png)") {
		t.Errorf("stylesheet reference not rewritten:\n%s", css)
	}
	if !strings.Contains(css, "url(https://example.com/x.png)") {
		t.Errorf("external stylesheet reference must stay unchanged:\n%s", css)
	}
	if _, err := os.Stat(filepath.Join(dir, "_assets", "static", "bg.png")); err != nil {
		t.Errorf("stylesheet asset not written: %v", err)
	}
}

func TestMirrorSaverRewritesInlineStyles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assets := newAssetServer(map[string][]byte{
		"https://bid3.afry.com/static/bg.png": {0x89, 'P', 'N', 'G'},
	})
	saver := NewMirrorSaver(dir, "/pages/", assets)

	page := &model.FetchResult{
		URL: "https://bid3.afry.com/pages/m/a.html",
		DOM: []byte(`<html><head><style>body{background:url("/static/bg.png")}</style></head></html>`),
	}

	rel, err := saver.Save(context.Background(), page, "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.Contains(string(data), "url(../_assets/static/bg.png)") {
		t.Errorf("inline style reference not rewritten:\n%s", data)
	}
	if _, err := os.Stat(filepath.Join(dir, "_assets", "static", "bg.png")); err != nil {
		t.Errorf("inline style asset not written: %v", err)
	}
}

func TestMirrorSaverKeepsRefOnAssetFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	assets := newAssetServer(nil)
	saver := NewMirrorSaver(dir, "/pages/", assets)

	page := &model.FetchResult{
		URL: "https://bid3.afry.com/pages/m/a.html",
		DOM: []byte(`<html><body><img src="/static/missing.png"></body></html>`),
	}

	rel, err := saver.Save(context.Background(), page, "m")
	if err != nil {
		t.Fatalf("asset failures must not fail the page: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.Contains(string(data), `src="/static/missing.png"`) {
		t.Error("failed asset reference must stay unchanged")
	}
}
