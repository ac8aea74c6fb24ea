package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/browser"
	"github.com/go-resty/resty/v2"
)

// StaticSource fetches the raw HTML of a page without running scripts. It
// serves storefronts that render their listings server-side.
type StaticSource struct {
	client *resty.Client
}

func NewStaticSource(timeout time.Duration, userAgent string) *StaticSource {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return &StaticSource{client: client}
}

func NewStaticSourceWithClient(client *resty.Client) *StaticSource {
	return &StaticSource{client: client}
}

// Render fetches url. The settle delay has no meaning without a script engine
// and is ignored.
func (s *StaticSource) Render(ctx context.Context, url string, _ time.Duration) (*browser.Snapshot, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode())
	}

	finalURL := url
	if resp.RawResponse != nil && resp.RawResponse.Request != nil && resp.RawResponse.Request.URL != nil {
		finalURL = resp.RawResponse.Request.URL.String()
	}

	return &browser.Snapshot{HTML: resp.String(), URL: finalURL}, nil
}
