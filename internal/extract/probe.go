package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ImageProber checks that an image URL is reachable before it is accepted.
type ImageProber interface {
	Probe(ctx context.Context, imageURL string) error
}

// NopProber accepts every URL without touching the network.
type NopProber struct{}

func (NopProber) Probe(context.Context, string) error { return nil }

// HTTPProber issues a HEAD request and accepts any 2xx response.
type HTTPProber struct {
	client *resty.Client
}

func NewHTTPProber(timeout time.Duration, userAgent string) *HTTPProber {
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}

	return &HTTPProber{client: client}
}

// NewHTTPProberWithClient is used when the caller already owns a configured client.
func NewHTTPProberWithClient(client *resty.Client) *HTTPProber {
	return &HTTPProber{client: client}
}

func (p *HTTPProber) Probe(ctx context.Context, imageURL string) error {
	resp, err := p.client.R().SetContext(ctx).Head(imageURL)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("probe returned status %d", resp.StatusCode())
	}

	return nil
}
