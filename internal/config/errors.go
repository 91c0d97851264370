package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than creating
// new error instances in Validate() so that callers can use errors.Is() for
// programmatic handling while still getting human-readable messages. All of
// these are fatal: a run never starts with an invalid configuration.
var (
	// ErrNoSeedFile is returned when no seed file path is configured.
	ErrNoSeedFile = errors.New("no seed file specified: provide one with --seeds")

	// ErrNoOutputDir is returned when no output directory is configured.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidVariant is returned for a crawl variant other than
	// "capture" or "mirror".
	ErrInvalidVariant = errors.New(`invalid variant: must be "capture" or "mirror"`)

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidRetries is returned when fewer than one fetch attempt is
	// configured.
	ErrInvalidRetries = errors.New("invalid retries: must be at least 1")

	// ErrInvalidMaxPages is returned when the page limit is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxBodySize is returned when the body-size limit is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are requested.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrMissingCredentials is returned when login is required but the
	// credential environment variables are unset.
	ErrMissingCredentials = errors.New("portal credentials missing: set " + EnvUsername + " and " + EnvPassword + " (or use --no-login)")
)
