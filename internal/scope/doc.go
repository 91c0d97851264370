// Package scope implements URL canonicalization and the prefix-based scope
// rule that bounds the crawl.
//
// Every page has a scope root: the path prefix that a discovered link must
// match to be followed from that page. Two policies exist. Under the default
// "subpages" policy, a page at .../inputs.html only leads to pages under
// .../inputs/; siblings and ancestors are rejected. Under the "siblings"
// policy, the root is the page's containing directory, so sibling pages are
// also followed. Seeds themselves are always fetched regardless of scope.
//
// Canonicalization is the single normalization used for scope comparison and
// for visited-set deduplication: fragments are stripped, scheme and host are
// lowercased, an empty path becomes "/", and query strings are preserved so
// that distinct asset URLs are never conflated.
package scope
