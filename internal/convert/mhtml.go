package convert

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

var (
	// ErrNoHTMLPart is returned when an MHTML file contains no HTML part.
	ErrNoHTMLPart = errors.New("convert: no HTML part found in MHTML file")

	// ErrNotMHTML is returned when a file is not a MIME message at all.
	ErrNotMHTML = errors.New("convert: file is not an MHTML snapshot")
)

// Converter converts MHTML captures into standalone HTML files.
type Converter struct {
	// pagesPrefix is the absolute URL prefix of manual pages, e.g.
	// "https://bid3.afry.com/pages/". Links under it are rewritten to
	// flattened local filenames.
	pagesPrefix string

	logger *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithLogger sets the converter's logger.
func WithLogger(logger *slog.Logger) ConverterOption {
	return func(c *Converter) {
		c.logger = logger
	}
}

// NewConverter creates a Converter. pagesPrefix is the absolute URL prefix
// of manual pages whose links should be rewritten to local files.
func NewConverter(pagesPrefix string, opts ...ConverterOption) *Converter {
	c := &Converter{pagesPrefix: pagesPrefix}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// mhtmlPart is one decoded MIME part of an MHTML snapshot.
type mhtmlPart struct {
	contentType     string
	contentID       string
	contentLocation string
	body            []byte
}

// ConvertFile converts one .mhtml capture to an .html file. Images are
// extracted into a sibling "<name>_images" directory and the HTML's
// references are rewritten to point at them.
func (c *Converter) ConvertFile(mhtmlPath, htmlPath string) error {
	f, err := os.Open(mhtmlPath)
	if err != nil {
		return err
	}
	defer f.Close()

	parts, err := parseMHTML(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", mhtmlPath, err)
	}

	htmlPart := findHTMLPart(parts)
	if htmlPart == nil {
		return fmt.Errorf("%s: %w", mhtmlPath, ErrNoHTMLPart)
	}

	stem := strings.TrimSuffix(filepath.Base(htmlPath), ".html")
	imagesDirName := stem + "_images"
	imageMap, err := c.extractImages(parts, filepath.Join(filepath.Dir(htmlPath), imagesDirName))
	if err != nil {
		return err
	}

	rewritten, err := c.rewriteHTML(htmlPart.body, imageMap, imagesDirName)
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", mhtmlPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(htmlPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(htmlPath, rewritten, 0o644)
}

// parseMHTML reads the MIME message and decodes its parts.
func parseMHTML(r io.Reader) ([]mhtmlPart, error) {
	tp := textproto.NewReader(bufio.NewReader(r))
	header, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, ErrNotMHTML
	}

	mediaType, params, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return nil, ErrNotMHTML
	}

	// A snapshot of a page without subresources may be a bare HTML part.
	if !strings.HasPrefix(mediaType, "multipart/") {
		body, err := decodeBody(tp.R, header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return nil, err
		}
		return []mhtmlPart{{
			contentType:     mediaType,
			contentLocation: header.Get("Content-Location"),
			body:            body,
		}}, nil
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrNotMHTML
	}

	var parts []mhtmlPart
	mr := multipart.NewReader(tp.R, boundary)
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		partType, _, err := mime.ParseMediaType(p.Header.Get("Content-Type"))
		if err != nil {
			partType = "application/octet-stream"
		}

		body, err := decodeBody(p, p.Header.Get("Content-Transfer-Encoding"))
		if err != nil {
			return nil, err
		}

		parts = append(parts, mhtmlPart{
			contentType:     partType,
			contentID:       strings.Trim(p.Header.Get("Content-ID"), "<>"),
			contentLocation: p.Header.Get("Content-Location"),
			body:            body,
		})
	}

	return parts, nil
}

// decodeBody reads a part body, undoing its transfer encoding.
func decodeBody(r io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return io.ReadAll(base64.NewDecoder(base64.StdEncoding, newBase64CleanReader(r)))
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(r))
	default:
		return io.ReadAll(r)
	}
}

// base64CleanReader strips whitespace so line-wrapped base64 decodes.
type base64CleanReader struct {
	r io.Reader
}

func newBase64CleanReader(r io.Reader) io.Reader {
	return &base64CleanReader{r: r}
}

func (b *base64CleanReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	cleaned := 0
	for i := 0; i < n; i++ {
		switch p[i] {
		case '\r', '\n', ' ', '\t':
		default:
			p[cleaned] = p[i]
			cleaned++
		}
	}
	if cleaned == 0 && err == nil {
		// All input was whitespace; try again for real data.
		return b.Read(p)
	}
	return cleaned, err
}

// findHTMLPart returns the first text/html part, which holds the page body.
func findHTMLPart(parts []mhtmlPart) *mhtmlPart {
	for i := range parts {
		if parts[i].contentType == "text/html" {
			return &parts[i]
		}
	}
	return nil
}

// extractImages writes every image part into imagesDir and returns a map
// from Content-ID and Content-Location to the written filename.
func (c *Converter) extractImages(parts []mhtmlPart, imagesDir string) (map[string]string, error) {
	imageMap := make(map[string]string)

	for _, p := range parts {
		if !strings.HasPrefix(p.contentType, "image/") {
			continue
		}

		ext := strings.TrimPrefix(p.contentType, "image/")
		var name string
		switch {
		case p.contentLocation != "":
			name = path.Base(p.contentLocation)
		case p.contentID != "":
			name = p.contentID + "." + ext
		default:
			name = fmt.Sprintf("image_%d.%s", len(imageMap), ext)
		}

		if err := os.MkdirAll(imagesDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(imagesDir, name), p.body, 0o644); err != nil {
			return nil, err
		}

		if p.contentID != "" {
			imageMap[p.contentID] = name
		}
		if p.contentLocation != "" {
			imageMap[p.contentLocation] = name
		}
	}

	return imageMap, nil
}

// rewriteHTML rewrites image references to the extracted files, rewrites
// portal links to flattened local filenames, and drops HTML comments.
func (c *Converter) rewriteHTML(body []byte, imageMap map[string]string, imagesDirName string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	c.rewriteNode(doc, imageMap, imagesDirName)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Converter) rewriteNode(n *html.Node, imageMap map[string]string, imagesDirName string) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		if child.Type == html.CommentNode {
			n.RemoveChild(child)
		} else {
			c.rewriteNode(child, imageMap, imagesDirName)
		}
		child = next
	}

	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "img":
		for i, a := range n.Attr {
			if a.Key == "src" {
				if local := localImageRef(a.Val, imageMap, imagesDirName); local != "" {
					n.Attr[i].Val = local
				}
			}
		}
	case "a":
		for i, a := range n.Attr {
			if a.Key == "href" {
				if local := c.localPageRef(a.Val); local != "" {
					n.Attr[i].Val = local
				}
			}
		}
	}
}

// localImageRef maps an image src to its extracted file, handling both cid:
// references and absolute Content-Location URLs.
func localImageRef(src string, imageMap map[string]string, imagesDirName string) string {
	key := strings.TrimPrefix(src, "cid:")
	name, ok := imageMap[key]
	if !ok {
		return ""
	}
	// Percent-encode for browser compatibility.
	u := url.URL{Path: imagesDirName + "/" + name}
	return u.EscapedPath()
}

// localPageRef flattens a portal manual link into the local filename its
// converted capture would have. Non-portal links are left alone.
func (c *Converter) localPageRef(href string) string {
	if !strings.HasPrefix(href, c.pagesPrefix) {
		return ""
	}

	rel := strings.TrimPrefix(href, c.pagesPrefix)
	rel, fragment, _ := strings.Cut(rel, "#")
	rel = strings.TrimSuffix(rel, ".html")
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return ""
	}

	// Underscores inside a segment become hyphens, matching the names the
	// capture run derives, so the rewritten link finds its converted file.
	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		segments[i] = strings.ReplaceAll(seg, "_", "-")
	}

	local := strings.Join(segments, "_") + ".html"
	if fragment != "" {
		local += "#" + fragment
	}
	return local
}
