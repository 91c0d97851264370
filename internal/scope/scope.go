package scope

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Policy selects how a page's scope root for further traversal is derived.
type Policy string

const (
	// PolicySubpages derives the root from the page's own subpage
	// directory: .../name.html recurses only into .../name/.
	PolicySubpages Policy = "subpages"

	// PolicySiblings derives the root from the page's containing
	// directory, so sibling pages are also followed.
	PolicySiblings Policy = "siblings"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized values.
var ErrUnknownPolicy = errors.New("unknown scope policy")

// ParsePolicy converts a string (typically a CLI flag value) to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case PolicySubpages:
		return PolicySubpages, nil
	case PolicySiblings:
		return PolicySiblings, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownPolicy, s, PolicySubpages, PolicySiblings)
	}
}

// Canonicalize normalizes a URL into the string form used for scope
// comparison and visited-set deduplication.
//
// Normalization: fragment removed, scheme and host lowercased, empty path
// becomes "/". The query string is kept because two asset URLs that differ
// only in their query may serve different content. Unparseable input is
// returned unchanged so that callers can still record it in reports.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// Rule decides whether discovered links are eligible for recursion.
// The zero value is not usable; construct with NewRule.
type Rule struct {
	policy Policy

	// pagesPath is the site path prefix all manual pages live under.
	pagesPath string
}

// NewRule creates a scope rule for the given policy. pagesPath is the path
// prefix that all in-scope pages must share (for example "/pages/").
func NewRule(policy Policy, pagesPath string) Rule {
	if !strings.HasSuffix(pagesPath, "/") {
		pagesPath += "/"
	}
	return Rule{policy: policy, pagesPath: pagesPath}
}

// Policy returns the policy this rule applies.
func (r Rule) Policy() Policy {
	return r.policy
}

// RootFor derives the scope root for links discovered on the given page.
// The result is a canonical URL string ending in "/".
func (r Rule) RootFor(pageURL string) string {
	c := Canonicalize(pageURL)

	// Strip any query before deriving a directory prefix; scope roots are
	// pure path prefixes.
	if i := strings.IndexByte(c, '?'); i >= 0 {
		c = c[:i]
	}

	if r.policy == PolicySubpages && strings.HasSuffix(c, ".html") {
		return strings.TrimSuffix(c, ".html") + "/"
	}

	if i := strings.LastIndexByte(c, '/'); i >= 0 {
		return c[:i+1]
	}
	return c + "/"
}

// InScope reports whether candidate is eligible for recursion under the
// given scope root. The candidate must be an HTML page beneath both the
// site's manuals prefix and the root. Query strings are ignored for the
// comparison; they only matter for visited-set identity. Scope filtering
// applies only to discovered links; seeds bypass this check.
func (r Rule) InScope(candidate, root string) bool {
	c := Canonicalize(candidate)
	if i := strings.IndexByte(c, '?'); i >= 0 {
		c = c[:i]
	}

	u, err := url.Parse(c)
	if err != nil {
		return false
	}
	if !strings.HasPrefix(u.Path, r.pagesPath) {
		return false
	}
	if !strings.HasSuffix(u.Path, ".html") {
		return false
	}

	return strings.HasPrefix(c, root)
}
