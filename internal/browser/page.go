// Package browser drives a real browser for listing-page traversal.
package browser

import (
	"context"
	"time"
)

// Page is the browser capability the crawl coordinator needs. Selectors are
// CSS; methods operating on "the" element use the first match.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	// WaitVisible waits for the first match to be visible.
	WaitVisible(selector string, timeout time.Duration) error
	Count(selector string) (int, error)
	// Attributes reads an attribute from every match, skipping empty values.
	Attributes(selector, name string) ([]string, error)
	ClickNth(selector string, n int) error
	Click(selector string) error
	Fill(selector, value string) error
	Press(selector, key string) error
	// IsDisabled checks the disabled property, aria-disabled and a "disabled" class.
	IsDisabled(selector string) (bool, error)
	ScrollHeight() (int, error)
	ScrollToBottom() error
	Content() (string, error)
	Back() error
	Screenshot(path string) error
	// Close releases the page and its browser context.
	Close() error
}

// Launcher opens an isolated browser session, one per site traversal.
type Launcher interface {
	Open(ctx context.Context) (Page, error)
}
