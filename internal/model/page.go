package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FetchResult holds the outcome of fetching a single page.
//
// Design decision: We carry two byte slices rather than one because the two
// crawl variants disagree about what "the content" is:
//  1. The capture variant persists an MHTML snapshot but extracts links from
//     the rendered DOM, so Body and DOM differ.
//  2. The mirror variant persists the HTML it fetched, so Body and DOM are
//     the same bytes.
//
// Keeping both on the result lets the engine treat the variants uniformly.
type FetchResult struct {
	// URL is the URL that was fetched, after redirects.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code. Browser-driven fetches
	// that cannot observe the status report 200 on success.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of Body.
	ContentType string `json:"content_type"`

	// Body is the content to persist (HTML or MHTML).
	Body []byte `json:"-"`

	// DOM is the HTML used for link and asset extraction.
	DOM []byte `json:"-"`

	// Hash is the SHA-256 hex digest of Body, used for change detection
	// in the run-history database.
	Hash string `json:"hash"`
}

// ComputeHash fills Hash from the current Body.
func (f *FetchResult) ComputeHash() {
	sum := sha256.Sum256(f.Body)
	f.Hash = hex.EncodeToString(sum[:])
}

// IsHTML reports whether the fetched body is an HTML document.
func (f *FetchResult) IsHTML() bool {
	return strings.Contains(strings.ToLower(f.ContentType), "text/html")
}
