package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// Login form selectors used by the portal.
const (
	usernameSelector = `input[name="name"]`
	passwordSelector = `input[name="pwd"]`
	submitSelector   = `[name="portletlogin"]`
)

// Browser owns a headless Chrome instance shared by login and page capture.
// Close must be called to shut the instance down.
type Browser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *slog.Logger
	loginTimeout  time.Duration
}

// Option configures a Browser.
type Option func(*options)

type options struct {
	headless     bool
	logger       *slog.Logger
	loginTimeout time.Duration
}

// WithHeadless controls whether Chrome runs without a visible window.
// Running headful helps when debugging login problems.
func WithHeadless(headless bool) Option {
	return func(o *options) {
		o.headless = headless
	}
}

// WithLogger sets the browser's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLoginTimeout bounds how long a login attempt may take.
func WithLoginTimeout(d time.Duration) Option {
	return func(o *options) {
		o.loginTimeout = d
	}
}

// New launches a Chrome instance and returns a Browser bound to it.
func New(opts ...Option) *Browser {
	o := &options{
		headless:     true,
		loginTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("headless", o.headless),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &Browser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        o.logger,
		loginTimeout:  o.loginTimeout,
	}
}

// Close shuts down the Chrome instance.
func (b *Browser) Close() {
	b.browserCancel()
	b.allocCancel()
}

// Login fills in the portal's login form and returns the authenticated
// session. The portal redirects on success; a post-login URL that still
// mentions the login page or an error means the credentials were rejected.
func (b *Browser) Login(ctx context.Context, loginURL, username, password string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.logger.Info("logging in", "url", loginURL)

	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, b.loginTimeout)
	defer timeoutCancel()

	var landedURL string
	var cookies []Cookie

	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(usernameSelector, chromedp.ByQuery),
		chromedp.SendKeys(usernameSelector, username, chromedp.ByQuery),
		chromedp.SendKeys(passwordSelector, password, chromedp.ByQuery),
		chromedp.Click(submitSelector, chromedp.ByQuery),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&landedURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			raw, err := storage.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range raw {
				cookie := Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Secure:   c.Secure,
					HTTPOnly: c.HTTPOnly,
				}
				if c.Expires > 0 {
					cookie.Expires = time.Unix(int64(c.Expires), 0)
				}
				cookies = append(cookies, cookie)
			}
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("login navigation: %w", err)
	}

	if !loginSucceeded(landedURL) {
		b.logger.Warn("login rejected", "landed_url", landedURL)
		return nil, ErrLoginFailed
	}

	b.logger.Info("login succeeded", "landed_url", landedURL, "cookies", len(cookies))
	return NewSession(cookies), nil
}

// loginSucceeded reports whether the post-login URL indicates a successful
// redirect away from the login flow.
func loginSucceeded(landedURL string) bool {
	lower := strings.ToLower(landedURL)
	return lower != "" && !strings.Contains(lower, "login") && !strings.Contains(lower, "error")
}
