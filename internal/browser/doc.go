// Package browser drives a headless Chrome instance for the two jobs plain
// HTTP cannot do: authenticating against the portal's JavaScript login form
// and capturing fully rendered pages as MHTML snapshots.
//
// Login produces a Session whose cookies can back an http.CookieJar, so the
// rest of the crawl can run over plain HTTP when no snapshot is needed.
package browser
