package crawler

import (
	"errors"
	"fmt"
)

// ErrTooManyFailures is returned by Engine.Run when the configured number of
// consecutive task failures is reached. Results gathered so far stay valid.
var ErrTooManyFailures = errors.New("aborting crawl: too many consecutive failures")

// FetchErrorKind classifies why a fetch failed.
type FetchErrorKind string

// Fetch failure classes. The engine records the kind in the run report so
// that a failed run is diagnosable without re-running with debug logging.
const (
	// FetchTimeout covers deadline and timeout failures.
	FetchTimeout FetchErrorKind = "timeout"

	// FetchNetwork covers connection-level failures (refused, reset, DNS).
	FetchNetwork FetchErrorKind = "network"

	// FetchHTTP covers responses with a 4xx or 5xx status code.
	FetchHTTP FetchErrorKind = "http"
)

// FetchError describes a per-page fetch failure. It is recoverable at task
// granularity: the engine records it and moves on.
type FetchError struct {
	// URL is the URL whose fetch failed.
	URL string

	// Kind classifies the failure.
	Kind FetchErrorKind

	// StatusCode is set for FetchHTTP failures.
	StatusCode int

	// Err is the underlying error, nil for plain HTTP status failures.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTP:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}
