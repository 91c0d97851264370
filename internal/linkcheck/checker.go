package linkcheck

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Checker verifies offline navigation for a mirrored site rooted at Dir.
type Checker struct {
	dir    string
	logger *slog.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithLogger sets the checker's logger.
func WithLogger(logger *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// NewChecker creates a Checker for the mirror rooted at dir.
func NewChecker(dir string, opts ...CheckerOption) *Checker {
	c := &Checker{dir: dir}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Check walks every HTML file in the mirror and returns broken references,
// each formatted as "file: reference". An empty slice means the mirror
// navigates cleanly.
func (c *Checker) Check() ([]string, error) {
	var broken []string

	err := filepath.WalkDir(c.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".html") {
			return nil
		}

		rel, err := filepath.Rel(c.dir, p)
		if err != nil {
			return err
		}

		problems, err := c.checkFile(p, filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("checking %s: %w", rel, err)
		}
		broken = append(broken, problems...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("link check finished", "broken", len(broken))
	return broken, nil
}

// checkFile parses one HTML file and verifies its relative references.
func (c *Checker) checkFile(absPath, relPath string) ([]string, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var problems []string
	seen := make(map[string]struct{})

	c.walk(doc, func(ref string) {
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}

		target, ok := localTarget(ref)
		if !ok {
			return
		}

		// Absolute paths cannot resolve from a file:// mirror.
		if strings.HasPrefix(target, "/") {
			problems = append(problems, fmt.Sprintf("%s: %s", relPath, ref))
			return
		}

		resolved := path.Join(path.Dir(relPath), target)
		if strings.HasPrefix(resolved, "../") {
			problems = append(problems, fmt.Sprintf("%s: %s", relPath, ref))
			return
		}

		full := filepath.Join(c.dir, filepath.FromSlash(resolved))
		if _, err := os.Stat(full); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %s", relPath, ref))
		}
	})

	return problems, nil
}

// walk visits every href and src attribute in the document.
func (c *Checker) walk(n *html.Node, visit func(ref string)) {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "href" || a.Key == "src" {
				if a.Val != "" {
					visit(a.Val)
				}
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.walk(child, visit)
	}
}

// localTarget extracts the file path of a reference that should resolve
// inside the mirror. External, fragment-only, and non-file references
// return ok=false. Query strings and fragments are stripped.
func localTarget(ref string) (string, bool) {
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "javascript:") || strings.HasPrefix(ref, "tel:") {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}

	return u.Path, true
}
