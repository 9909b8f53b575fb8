package scraper

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/rugby-fixtures/internal/fixture"
	"github.com/pfrederiksen/rugby-fixtures/internal/logger"
)

// BrowserFetcher renders pages in headless Chrome and returns the resulting
// HTML. Use it when the fixture list is filled in by JavaScript.
// Requires Chrome or Chromium on the host.
type BrowserFetcher struct {
	timeout time.Duration
	settle  time.Duration
}

// NewBrowserFetcher creates a BrowserFetcher; a zero timeout selects Timeout
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &BrowserFetcher{timeout: timeout, settle: 2 * time.Second}
}

// Fetch navigates to url and returns the rendered document
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(UserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, b.timeout)
	defer cancel()

	logger.Debug("rendering page in headless browser", logger.Fields{"url": url})

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "browser rendering failed"), fixture.ErrNetwork)
	}
	return html, nil
}
