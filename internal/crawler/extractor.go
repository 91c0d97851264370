package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Extractor turns fetched page content into candidate URLs. Implementations
// resolve relative references against the page's own URL.
type Extractor interface {
	// ExtractLinks returns the anchor targets referenced by the page.
	ExtractLinks(dom []byte, baseURL string) ([]string, error)
}

// HTMLExtractor extracts anchor targets from HTML documents.
//
// Design decision: We parse with golang.org/x/net/html rather than regex
// because it correctly handles the malformed markup that real sites emit.
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTMLExtractor.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// ExtractLinks returns all resolvable anchor targets, deduplicated in
// document order.
func (e *HTMLExtractor) ExtractLinks(dom []byte, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(dom))
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	seen := make(map[string]struct{})

	walk(doc, func(n *html.Node) {
		if n.Data != "a" {
			return
		}
		if resolved := resolveRef(base, attr(n, "href")); resolved != "" {
			if _, ok := seen[resolved]; !ok {
				seen[resolved] = struct{}{}
				links = append(links, resolved)
			}
		}
	})

	return links, nil
}

// walk visits every element node in the tree.
func walk(n *html.Node, visit func(*html.Node)) {
	if n.Type == html.ElementNode {
		visit(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// attr returns the value of the named attribute, or "".
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// resolveRef resolves a reference against the base URL, dropping refs that
// cannot lead to a fetchable same-protocol resource.
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "#" {
		return ""
	}
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(ref, prefix) {
			return ""
		}
	}

	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
