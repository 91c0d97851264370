package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CaptureExt is the extension used for flattened page captures.
const CaptureExt = ".mhtml"

// assetDir is the subdirectory mirrored assets are written under.
const assetDir = "_assets"

// invalidNameChars are characters that cannot appear in filenames on at
// least one supported platform.
const invalidNameChars = `<>:"/\|?*`

// FlatName derives the flattened capture filename for a page. The path
// below pagesPath is collapsed into a single name, with directory
// separators becoming underscores:
//
//	/pages/user-manual/inputs/standing-data.html, category "user-manual"
//	  -> user-manual_inputs_standing-data.mhtml
//
// Underscores inside a segment become hyphens, so the underscore is always
// a segment boundary and two distinct URLs cannot flatten to the same name.
// The category prefix is only added when the first path segment does not
// already carry it.
func FlatName(pageURL, category, pagesPath string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	rel := strings.TrimPrefix(u.Path, pagesPath)
	rel = strings.TrimSuffix(rel, ".html")
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return "", ErrEmptyPath
	}

	segments := strings.Split(rel, "/")
	if category != "" && segments[0] != sanitizeSegment(category) && segments[0] != category {
		segments = append([]string{category}, segments...)
	}
	for i, seg := range segments {
		segments[i] = sanitizeSegment(seg)
	}

	return strings.Join(segments, "_") + CaptureExt, nil
}

// MirrorPath derives the output-relative path for a page in a mirror run,
// preserving the site's directory layout below pagesPath.
func MirrorPath(pageURL, pagesPath string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	rel := strings.TrimPrefix(u.Path, pagesPath)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		rel += "index.html"
	}

	return cleanRelPath(rel)
}

// AssetPath derives the output-relative path for a downloaded asset. Assets
// live under a dedicated subtree keyed by their site-relative path, and a
// short hash of the query string keeps cache-busted variants apart:
//
//	/static/site.css?v=42 -> _assets/static/site.9f2c1a07.css
func AssetPath(assetURL string) (string, error) {
	u, err := url.Parse(assetURL)
	if err != nil {
		return "", err
	}

	rel := strings.TrimPrefix(u.Path, "/")
	if rel == "" {
		return "", ErrEmptyPath
	}

	if u.RawQuery != "" {
		ext := path.Ext(rel)
		rel = strings.TrimSuffix(rel, ext) + "." + queryHash(u.RawQuery) + ext
	}

	return cleanRelPath(path.Join(assetDir, rel))
}

// queryHash returns a short stable digest of an asset's query string.
func queryHash(rawQuery string) string {
	sum := sha1.Sum([]byte(rawQuery))
	return hex.EncodeToString(sum[:])[:8]
}

// sanitizeSegment normalizes a path segment into a portable filename part.
// The underscore is reserved as the flat-name join character, so segments
// never contain one after sanitization.
func sanitizeSegment(seg string) string {
	seg = norm.NFC.String(seg)
	var b strings.Builder
	b.Grow(len(seg))
	for _, r := range seg {
		switch {
		case strings.ContainsRune(invalidNameChars, r), r < 0x20:
			b.WriteRune('-')
		case r == ' ', r == '_':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cleanRelPath normalizes a relative path and rejects traversal outside the
// output root.
func cleanRelPath(rel string) (string, error) {
	cleaned := path.Clean(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", ErrPathEscapes
	}
	return cleaned, nil
}
