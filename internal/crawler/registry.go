package crawler

import "sync"

// Registry is the visited set for one crawl run: every canonical URL that
// has ever been queued or fetched. It only grows, which together with scope
// filtering guarantees termination.
//
// Design decision: URLs are registered at enqueue time, not at fetch time.
// Marking on enqueue means at most one task per canonical URL ever enters
// the queue, so no URL can be fetched twice even if fetches were ever
// parallelized, and self-links or back-links cannot loop.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRegistry creates an empty registry. Each run gets its own registry so
// that runs (and tests) never interfere with each other.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// MarkIfNew atomically records the canonical URL and reports whether it was
// new. A false return means the URL is a duplicate and must not be enqueued.
func (r *Registry) MarkIfNew(canonicalURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[canonicalURL]; ok {
		return false
	}
	r.seen[canonicalURL] = struct{}{}
	return true
}

// Seen reports whether the canonical URL has been registered.
func (r *Registry) Seen(canonicalURL string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.seen[canonicalURL]
	return ok
}

// Len returns the number of registered URLs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.seen)
}
