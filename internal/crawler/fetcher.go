package crawler

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// Fetcher resolves a URL to page content using an authenticated session.
// Implementations must return classified errors (*FetchError) for per-page
// failures so the engine can record and continue.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.FetchResult, error)
}

// HTTPFetcher fetches pages over plain HTTP using a cookie-jar session
// obtained from the browser login. It retries transient failures with a
// linear backoff before giving up.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	retries     int
	backoff     time.Duration
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.client.Timeout = d
	}
}

// WithRetries sets the number of fetch attempts per URL (minimum 1).
func WithRetries(n int) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if n >= 1 {
			f.retries = n
		}
	}
}

// WithRetryBackoff sets the base backoff between attempts; attempt n waits
// n times this value.
func WithRetryBackoff(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		f.backoff = d
	}
}

// WithMaxBodySize limits how many response bytes are read.
func WithMaxBodySize(size int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher. The jar carries the authenticated
// session cookies; pass nil for unauthenticated fetching. The session is
// read-only after login, so sharing the jar across fetches is safe.
func NewHTTPFetcher(jar http.CookieJar, opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
		userAgent:   "manualmirror/1.0",
		maxBodySize: 10 * 1024 * 1024,
		retries:     3,
		backoff:     500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch retrieves the page, retrying transient failures. Client errors
// (4xx) are not retried: the result will not change.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*model.FetchResult, error) {
	var lastErr error

	for attempt := 1; attempt <= f.retries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.backoff * time.Duration(attempt-1)):
			}
		}

		result, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return result, nil
		}
		lastErr = err

		// Only the caller's context distinguishes cancellation from a
		// per-request timeout: the client wraps both in the same
		// deadline error, and timeouts must go through the retry loop.
		if ctx.Err() != nil {
			return nil, err
		}

		var fe *FetchError
		if errors.As(err, &fe) && fe.Kind == FetchHTTP && fe.StatusCode < 500 {
			return nil, err
		}
	}

	return nil, lastErr
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, pageURL string) (*model.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: FetchNetwork, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: classifyTransportError(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &FetchError{URL: pageURL, Kind: FetchHTTP, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Kind: FetchNetwork, Err: err}
	}

	result := &model.FetchResult{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		DOM:         body,
	}
	result.ComputeHash()
	return result, nil
}

// classifyTransportError distinguishes timeouts from other network errors.
func classifyTransportError(err error) FetchErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FetchTimeout
	}
	return FetchNetwork
}
