package extractor

import (
	"context"
	"fmt"
	"time"

	"go-job-harvester/internal/browser"

	"github.com/gocolly/colly/v2"
)

// Fetcher loads the HTML of a page the extractor was only given a URL for.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CollyFetcher fetches pages over plain HTTP.
type CollyFetcher struct {
	userAgent string
	delay     time.Duration
}

func NewCollyFetcher(userAgent string, delay time.Duration) *CollyFetcher {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	return &CollyFetcher{userAgent: userAgent, delay: delay}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if deadline, ok := ctx.Deadline(); ok {
		c.SetRequestTimeout(time.Until(deadline))
	}
	if f.delay > 0 {
		_ = c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       f.delay,
			RandomDelay: f.delay / 2,
		})
	}

	var body string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("colly error: %w (status: %d)", err, r.StatusCode)
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("visit url: %w", err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	if body == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}
	return body, nil
}

// BrowserFetcher renders the page in a browser session, for sites that build
// their content client-side.
type BrowserFetcher struct {
	launcher browser.Launcher
	waitFor  string
	wait     time.Duration
}

// detailReady is the readiness condition used for detail pages.
const detailReady = "h1, p, h5, span"

func NewBrowserFetcher(launcher browser.Launcher, wait time.Duration) *BrowserFetcher {
	return &BrowserFetcher{launcher: launcher, waitFor: detailReady, wait: wait}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, err := f.launcher.Open(ctx)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return "", err
	}
	//readiness is best effort
	_ = page.WaitVisible(f.waitFor, f.wait)
	return page.Content()
}
