package storage

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// CaptureSaver writes each page as one flattened file in the output
// directory. The page body is persisted as-is, so it holds whatever the
// fetcher produced (an MHTML snapshot for browser captures, raw HTML for
// plain HTTP fetches).
type CaptureSaver struct {
	outputDir string
	pagesPath string
}

// NewCaptureSaver creates a CaptureSaver writing below outputDir.
func NewCaptureSaver(outputDir, pagesPath string) *CaptureSaver {
	return &CaptureSaver{
		outputDir: outputDir,
		pagesPath: pagesPath,
	}
}

// Save writes the page to its flattened filename and returns that name.
func (s *CaptureSaver) Save(_ context.Context, page *model.FetchResult, category string) (string, error) {
	name, err := FlatName(page.URL, category, s.pagesPath)
	if err != nil {
		return "", err
	}

	if err := writeFileAtomic(filepath.Join(s.outputDir, name), page.Body); err != nil {
		return "", err
	}

	return name, nil
}

// AssetFetcher retrieves asset bytes over the authenticated session. The
// crawl fetcher satisfies this directly.
type AssetFetcher interface {
	Fetch(ctx context.Context, assetURL string) (*model.FetchResult, error)
}

// MirrorSaver reproduces the site's directory layout under the output root.
// Each saved page has its internal links rewritten to relative local paths
// and its assets downloaded into a shared subtree, so the mirror can be
// browsed from disk without the portal.
type MirrorSaver struct {
	outputDir string
	pagesPath string
	fetcher   AssetFetcher
	logger    *slog.Logger

	mu         sync.Mutex
	downloaded map[string]string
}

// MirrorSaverOption configures a MirrorSaver.
type MirrorSaverOption func(*MirrorSaver)

// WithSaverLogger sets the saver's logger.
func WithSaverLogger(logger *slog.Logger) MirrorSaverOption {
	return func(s *MirrorSaver) {
		s.logger = logger
	}
}

// NewMirrorSaver creates a MirrorSaver writing below outputDir. The fetcher
// downloads assets and should share the session cookies used for pages.
func NewMirrorSaver(outputDir, pagesPath string, fetcher AssetFetcher, opts ...MirrorSaverOption) *MirrorSaver {
	s := &MirrorSaver{
		outputDir:  outputDir,
		pagesPath:  pagesPath,
		fetcher:    fetcher,
		downloaded: make(map[string]string),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Save rewrites the page's references, downloads its assets, and writes the
// result at its site-relative path. Asset failures are logged and leave the
// original reference untouched rather than failing the page.
func (s *MirrorSaver) Save(ctx context.Context, page *model.FetchResult, _ string) (string, error) {
	pagePath, err := MirrorPath(page.URL, s.pagesPath)
	if err != nil {
		return "", err
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(bytes.NewReader(page.DOM))
	if err != nil {
		return "", err
	}

	s.rewriteTree(ctx, doc, base, pagePath)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}

	if err := writeFileAtomic(filepath.Join(s.outputDir, filepath.FromSlash(pagePath)), buf.Bytes()); err != nil {
		return "", err
	}

	return pagePath, nil
}

// rewriteTree walks the document and rewrites page links and asset
// references to relative local paths.
func (s *MirrorSaver) rewriteTree(ctx context.Context, n *html.Node, base *url.URL, pagePath string) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "a":
			s.rewriteAttr(n, "href", func(ref string) string {
				return s.rewritePageLink(base, pagePath, ref)
			})
		case "img", "script":
			s.rewriteAttr(n, "src", func(ref string) string {
				return s.rewriteAssetRef(ctx, base, pagePath, ref)
			})
		case "link":
			s.rewriteAttr(n, "href", func(ref string) string {
				return s.rewriteAssetRef(ctx, base, pagePath, ref)
			})
		case "style":
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				rewritten := s.rewriteCSS(ctx, base, []byte(n.FirstChild.Data), pagePath)
				n.FirstChild.Data = string(rewritten)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.rewriteTree(ctx, c, base, pagePath)
	}
}

// rewriteAttr applies fn to the named attribute when present. Returning ""
// from fn leaves the attribute unchanged.
func (s *MirrorSaver) rewriteAttr(n *html.Node, key string, fn func(string) string) {
	for i, a := range n.Attr {
		if a.Key != key || a.Val == "" {
			continue
		}
		if rewritten := fn(a.Val); rewritten != "" {
			n.Attr[i].Val = rewritten
		}
		return
	}
}

// rewritePageLink maps a link into the mirrored page tree. Links that leave
// the manual area stay as they are.
func (s *MirrorSaver) rewritePageLink(base *url.URL, pagePath, ref string) string {
	resolved := s.resolveInternal(base, ref)
	if resolved == nil {
		return ""
	}
	if !strings.HasPrefix(resolved.Path, s.pagesPath) || !strings.HasSuffix(resolved.Path, ".html") {
		return ""
	}

	targetPath, err := MirrorPath(resolved.String(), s.pagesPath)
	if err != nil {
		return ""
	}

	rewritten := relativeRef(pagePath, targetPath)
	if resolved.Fragment != "" {
		rewritten += "#" + resolved.Fragment
	}
	return rewritten
}

// rewriteAssetRef downloads the referenced asset (once per URL) and maps the
// reference to the local copy.
func (s *MirrorSaver) rewriteAssetRef(ctx context.Context, base *url.URL, pagePath, ref string) string {
	resolved := s.resolveInternal(base, ref)
	if resolved == nil {
		return ""
	}

	assetPath, err := s.ensureAsset(ctx, resolved.String())
	if err != nil {
		s.logger.Warn("asset download failed", "url", resolved.String(), "error", err)
		return ""
	}

	return relativeRef(pagePath, assetPath)
}

// resolveInternal resolves ref against the page URL and returns it only when
// it points at the same host. Fragments-only, external, and non-HTTP
// references return nil.
func (s *MirrorSaver) resolveInternal(base *url.URL, ref string) *url.URL {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "javascript:") || strings.HasPrefix(ref, "mailto:") {
		return nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return nil
	}
	resolved := base.ResolveReference(u)
	if resolved.Host != base.Host || (resolved.Scheme != "http" && resolved.Scheme != "https") {
		return nil
	}
	return resolved
}

// ensureAsset downloads the asset unless a previous page already did, and
// returns its output-relative path. Stylesheets get their own url()
// references downloaded and rewritten before the file is written.
func (s *MirrorSaver) ensureAsset(ctx context.Context, assetURL string) (string, error) {
	rel, err := AssetPath(assetURL)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if prev, ok := s.downloaded[assetURL]; ok {
		s.mu.Unlock()
		return prev, nil
	}
	// Reserved before the fetch so stylesheets that reference each other
	// terminate instead of recursing.
	s.downloaded[assetURL] = rel
	s.mu.Unlock()

	result, err := s.fetcher.Fetch(ctx, assetURL)
	if err != nil {
		s.forget(assetURL)
		return "", err
	}

	body := result.Body
	if isStylesheet(rel, result.ContentType) {
		if base, err := url.Parse(assetURL); err == nil {
			body = s.rewriteCSS(ctx, base, body, rel)
		}
	}

	if err := writeFileAtomic(filepath.Join(s.outputDir, filepath.FromSlash(rel)), body); err != nil {
		s.forget(assetURL)
		return "", err
	}

	return rel, nil
}

// forget drops a reservation after a failed download.
func (s *MirrorSaver) forget(assetURL string) {
	s.mu.Lock()
	delete(s.downloaded, assetURL)
	s.mu.Unlock()
}

// cssURLPattern matches url(...) references in stylesheet text.
var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// rewriteCSS downloads the assets a stylesheet references through url() and
// rewrites the references relative to the stylesheet's own location. Failed
// downloads keep the original reference.
func (s *MirrorSaver) rewriteCSS(ctx context.Context, base *url.URL, body []byte, cssPath string) []byte {
	return cssURLPattern.ReplaceAllFunc(body, func(match []byte) []byte {
		ref := strings.TrimSpace(string(cssURLPattern.FindSubmatch(match)[1]))

		resolved := s.resolveInternal(base, ref)
		if resolved == nil {
			return match
		}

		nested, err := s.ensureAsset(ctx, resolved.String())
		if err != nil {
			s.logger.Warn("stylesheet asset download failed",
				"url", resolved.String(), "error", err)
			return match
		}

		return []byte("url(" + relativeRef(cssPath, nested) + ")")
	})
}

// isStylesheet reports whether a downloaded asset is CSS.
func isStylesheet(rel, contentType string) bool {
	return strings.HasSuffix(rel, ".css") ||
		strings.Contains(strings.ToLower(contentType), "text/css")
}
