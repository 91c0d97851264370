// Package crawler implements the seed-scoped crawl engine at the heart of
// manualmirror.
//
// # Architecture
//
// The Engine owns all mutable crawl state: a FIFO work queue of tasks and a
// Registry of canonical URLs already queued or visited. Everything else is
// injected as an interface:
//
//   - Fetcher resolves a URL to content using an authenticated session
//     (plain HTTP with session cookies, or a headless browser for MHTML
//     snapshots).
//   - Extractor turns fetched HTML into candidate link URLs.
//   - Saver derives the local destination and persists page content.
//
// # Traversal
//
// Traversal is breadth-first so pages near a seed land first. Discovered
// links are filtered against the current page's scope root (see the scope
// package) and deduplicated through the Registry before they are enqueued,
// so each canonical URL is fetched at most once per run. Termination follows
// from the registry only ever growing while scope confines candidates to a
// finite subtree.
//
// # Failure policy
//
// A failing page never aborts the run: the task is recorded as failed in the
// run report and the queue continues. The engine only stops early on context
// cancellation or after a configurable number of consecutive failures, which
// in practice means the session expired or the site went away.
//
// Crawling is deliberately sequential with a politeness delay between
// fetches; the target portal is small and server courtesy outweighs
// throughput.
package crawler
