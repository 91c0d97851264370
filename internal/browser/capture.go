package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/mirrordocs/manualmirror/internal/model"
)

// CaptureFetcher fetches pages by rendering them in the shared Chrome
// instance and snapshotting the result as MHTML. The snapshot inlines every
// resource the page references, which is what makes the flattened capture
// variant self-contained.
//
// The rendered DOM is returned separately from the snapshot so link
// discovery works on the same HTML the reader will see.
type CaptureFetcher struct {
	browser *Browser
	timeout time.Duration
}

// NewCaptureFetcher creates a CaptureFetcher with a per-page timeout.
func NewCaptureFetcher(b *Browser, timeout time.Duration) *CaptureFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CaptureFetcher{
		browser: b,
		timeout: timeout,
	}
}

// Fetch renders the page in a fresh tab and returns its MHTML snapshot as
// the body. The tab inherits the session established by Login.
func (f *CaptureFetcher) Fetch(ctx context.Context, pageURL string) (*model.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tabCtx, cancel := chromedp.NewContext(f.browser.browserCtx)
	defer cancel()
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, f.timeout)
	defer timeoutCancel()

	var dom string
	var snapshot string

	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &dom, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, err := page.CaptureSnapshot().
				WithFormat(page.CaptureSnapshotFormatMhtml).
				Do(ctx)
			if err != nil {
				return err
			}
			snapshot = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("capturing %s: %w", pageURL, err)
	}

	result := &model.FetchResult{
		URL:         pageURL,
		StatusCode:  http.StatusOK,
		ContentType: "multipart/related",
		Body:        []byte(snapshot),
		DOM:         []byte(dom),
	}
	result.ComputeHash()
	return result, nil
}
