package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/browser"
)

var (
	ErrInvalidURL    = errors.New("invalid store URL")
	ErrFetchFailed   = errors.New("failed to load store page")
	ErrScrapeTimeout = errors.New("scrape timed out")
)

// PageSource loads a store page and returns its settled document.
// *browser.Browser renders with JavaScript; StaticSource only fetches the HTML.
type PageSource interface {
	Render(ctx context.Context, url string, settle time.Duration) (*browser.Snapshot, error)
}

type Options struct {
	SettleDelay   time.Duration
	ScrapeTimeout time.Duration
	RateLimitMin  time.Duration
	RateLimitMax  time.Duration
}

func DefaultOptions() Options {
	return Options{
		SettleDelay:   time.Second,
		ScrapeTimeout: 45 * time.Second,
		RateLimitMin:  500 * time.Millisecond,
		RateLimitMax:  2 * time.Second,
	}
}
