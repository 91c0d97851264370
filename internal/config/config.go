package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mirrordocs/manualmirror/internal/scope"
)

// Default configuration values. These mirror the behavior of the original
// portal scraper where applicable and otherwise follow conservative,
// politeness-first choices: the target site is small, so throughput matters
// far less than not hammering the server.
const (
	// DefaultBaseURL is the portal origin all manual pages live under.
	DefaultBaseURL = "https://bid3.afry.com"

	// DefaultPagesPath is the site path prefix of the manuals section.
	// Only pages under this prefix are ever crawled.
	DefaultPagesPath = "/pages/"

	// DefaultLoginPath is the portal's interactive login page.
	DefaultLoginPath = "/other/cloudlogin.html"

	// DefaultDelay is the politeness delay between consecutive fetches.
	DefaultDelay = 1 * time.Second

	// DefaultTimeout is the per-request timeout. The portal is a normal
	// clearnet site, so 30 seconds is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is the number of fetch attempts per page before the
	// task is recorded as failed.
	DefaultRetries = 3

	// DefaultRetryBackoff is the base backoff between retry attempts;
	// attempt n waits n times this value.
	DefaultRetryBackoff = 500 * time.Millisecond

	// DefaultMaxPages bounds the total pages fetched in one run. The real
	// site has a few hundred pages; this is a runaway guard, not a quota.
	DefaultMaxPages = 1000

	// DefaultMaxConsecutiveFailures aborts the run when this many tasks
	// fail back to back, which usually means the session expired or the
	// site went down.
	DefaultMaxConsecutiveFailures = 10

	// DefaultUserAgent identifies manualmirror in HTTP requests.
	DefaultUserAgent = "manualmirror/1.0 (+https://github.com/mirrordocs/manualmirror)"

	// DefaultMaxBodySize limits response bodies to protect against
	// unexpectedly large responses. Manual pages are small.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultLoginTimeout bounds the interactive browser login.
	DefaultLoginTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "manualmirror"
)

// Crawl variants.
const (
	// VariantCapture saves each page as a flattened single-file MHTML
	// snapshot rendered by a headless browser.
	VariantCapture = "capture"

	// VariantMirror rebuilds the site's directory structure locally,
	// downloads same-site assets, and rewrites internal links so the
	// mirror is navigable offline.
	VariantMirror = "mirror"
)

// Environment variable names for portal credentials. Credentials are never
// accepted as CLI flags to keep them out of shell history.
const (
	EnvUsername = "MANUALMIRROR_USERNAME"
	EnvPassword = "MANUALMIRROR_PASSWORD"
)

// Config holds all options for a mirror run. It is populated from CLI flags
// and environment variables, validated once, then treated as immutable.
type Config struct {
	// BaseURL is the portal origin, e.g. "https://bid3.afry.com".
	BaseURL string

	// PagesPath is the path prefix of the manuals section.
	PagesPath string

	// LoginPath is the path of the portal login page, relative to BaseURL.
	LoginPath string

	// SeedFile is the path of the YAML seed list.
	SeedFile string

	// OutputDir is the root directory the mirror or captures are written to.
	OutputDir string

	// Variant selects the crawl mode: VariantCapture or VariantMirror.
	Variant string

	// ScopePolicy selects how each page's scope root is derived.
	ScopePolicy scope.Policy

	// Username and Password are the portal credentials, read from the
	// environment (EnvUsername / EnvPassword).
	Username string
	Password string

	// SkipLogin disables the browser login step. Useful against portals
	// (or test servers) that serve the manuals without authentication.
	SkipLogin bool

	// Headless controls whether the login browser runs headless.
	// Disabling it helps debug login-form changes.
	Headless bool

	// Delay is the politeness delay between consecutive fetches.
	Delay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Retries is the number of fetch attempts per page.
	Retries int

	// RetryBackoff is the base backoff between retry attempts.
	RetryBackoff time.Duration

	// MaxPages bounds the total number of pages fetched in one run.
	MaxPages int

	// MaxConsecutiveFailures aborts the run after this many back-to-back
	// task failures. Zero disables the guard.
	MaxConsecutiveFailures int

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodySize limits response body reads, in bytes.
	MaxBodySize int64

	// LoginTimeout bounds the interactive browser login.
	LoginTimeout time.Duration

	// LinkCheck runs the offline link validation pass after a mirror run.
	LinkCheck bool

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport and MarkdownReport select the run-report format.
	// Mutually exclusive; the default is a human-readable text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile, when set, writes the report to this path in addition
	// to stdout.
	ReportFile string

	// DBDir is the directory of the run-history SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig returns a Config with all defaults applied.
//
// Design decision: We use a constructor rather than relying on zero values
// because most defaults are non-zero (delays, limits, URLs), and having them
// in one place documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		BaseURL:                DefaultBaseURL,
		PagesPath:              DefaultPagesPath,
		LoginPath:              DefaultLoginPath,
		Variant:                VariantMirror,
		ScopePolicy:            scope.PolicySubpages,
		Headless:               true,
		Delay:                  DefaultDelay,
		Timeout:                DefaultTimeout,
		Retries:                DefaultRetries,
		RetryBackoff:           DefaultRetryBackoff,
		MaxPages:               DefaultMaxPages,
		MaxConsecutiveFailures: DefaultMaxConsecutiveFailures,
		UserAgent:              DefaultUserAgent,
		MaxBodySize:            DefaultMaxBodySize,
		LoginTimeout:           DefaultLoginTimeout,
		DBDir:                  XDGDataDir(),
		SaveToDB:               true,
	}
}

// XDGDataDir returns the XDG data directory for manualmirror
// (~/.local/share/manualmirror on Linux).
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after flag parsing, before any login or fetch.
func (c *Config) Validate() error {
	if c.SeedFile == "" {
		return ErrNoSeedFile
	}
	if c.OutputDir == "" {
		return ErrNoOutputDir
	}
	if c.Variant != VariantCapture && c.Variant != VariantMirror {
		return ErrInvalidVariant
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Retries < 1 {
		return ErrInvalidRetries
	}
	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if !c.SkipLogin && (c.Username == "" || c.Password == "") {
		return ErrMissingCredentials
	}
	return nil
}

// LoginURL returns the absolute URL of the portal login page.
func (c *Config) LoginURL() string {
	return c.BaseURL + c.LoginPath
}

// SitePrefix returns the absolute URL prefix of the manuals section,
// e.g. "https://bid3.afry.com/pages/".
func (c *Config) SitePrefix() string {
	return c.BaseURL + c.PagesPath
}
