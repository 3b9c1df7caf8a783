// Package rod implements browser-backed fetching and SPA interaction using
// Chrome automation.
package rod

import (
	"context"
	"time"

	"github.com/clinscrape/clinscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Rendering wait parameters. The settle delay is always applied; the content
// and network-idle waits are best effort and never fatal, since many clinic
// pages keep long-polling connections open or lack conventional headings.
const (
	DefaultSettleDelay = 3 * time.Second
	contentWaitTimeout = 3 * time.Second
	networkIdleTimeout = 5 * time.Second
	networkIdlePeriod  = 300 * time.Millisecond
)

// contentSelector matches generic content landmarks used to detect that a
// rendered page has produced something readable.
const contentSelector = "h1, h2, main, article, .content, .product, p"

// Ensure Fetcher implements clinscrape.Fetcher at compile time.
var _ clinscrape.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	bm        *BrowserManager
	settle    time.Duration
	userAgent string
	viewport  *proto.EmulationSetDeviceMetricsOverride
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithSettleDelay overrides the post-load settle delay.
func WithSettleDelay(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.settle = d
	}
}

// WithUserAgent overrides the browser user agent per page.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithViewport sets the page viewport. Defaults to the browser default.
func WithViewport(width, height int) FetcherOption {
	return func(f *Fetcher) {
		f.viewport = &proto.EmulationSetDeviceMetricsOverride{
			Width:             width,
			Height:            height,
			DeviceScaleFactor: 1,
		}
	}
}

// NewFetcher creates a new Fetcher backed by a recycling browser manager.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	bm, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}

	f := &Fetcher{bm: bm, settle: DefaultSettleDelay}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch navigates to the URL, lets the page render and settle, and returns
// the rendered HTML. The page is always closed, on every exit path.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := f.bm.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := f.preparePage(page); err != nil {
		return "", err
	}

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := settlePage(ctx, page, f.settle); err != nil {
		return "", err
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.bm.IncrementPageCount()
	return html, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.bm.Close()
}

// preparePage applies user agent and viewport overrides.
func (f *Fetcher) preparePage(page *rod.Page) error {
	if f.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.userAgent}); err != nil {
			return err
		}
	}
	if f.viewport != nil {
		if err := page.SetViewport(f.viewport); err != nil {
			return err
		}
	}
	return nil
}

// settlePage waits for the DOM to load, applies the settle delay, then tries
// a short content-selector wait and a short network-idle wait. The latter
// two time out silently.
func settlePage(ctx context.Context, page *rod.Page, settle time.Duration) error {
	if err := page.WaitLoad(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(settle):
	}

	// Best effort: a content landmark usually appears once client-side
	// rendering finishes. Failure here is not a failed fetch.
	if _, err := page.Timeout(contentWaitTimeout).Element(contentSelector); err != nil {
		_ = err
	}

	// Best effort: bounded network-idle wait.
	wait := page.Timeout(networkIdleTimeout).WaitRequestIdle(networkIdlePeriod, nil, nil, nil)
	wait()

	return ctx.Err()
}
