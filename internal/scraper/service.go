package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/emerssive/Chrome-Extension/internal/extract"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"github.com/emerssive/Chrome-Extension/internal/ratelimit"
)

// Service loads store pages and runs the extraction pipeline over them.
type Service struct {
	source    PageSource
	pipeline  *extract.Pipeline
	rateLimit *ratelimit.HostLimiter
	settle    time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

func NewService(source PageSource, pipeline *extract.Pipeline, opts Options, logger *slog.Logger) *Service {
	defaults := DefaultOptions()
	if opts.ScrapeTimeout <= 0 {
		opts.ScrapeTimeout = defaults.ScrapeTimeout
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	return &Service{
		source:    source,
		pipeline:  pipeline,
		rateLimit: ratelimit.NewHostLimiter(opts.RateLimitMin, opts.RateLimitMax),
		settle:    opts.SettleDelay,
		timeout:   opts.ScrapeTimeout,
		logger:    logger.With("component", "scraper"),
	}
}

// Scrape loads storeURL and returns the product candidates found on it. A page
// without recognizable products is not an error; Products is empty.
func (s *Service) Scrape(ctx context.Context, storeURL string) (*models.ScrapeResult, error) {
	u, err := parseStoreURL(storeURL)
	if err != nil {
		return nil, err
	}

	if err := s.rateLimit.Wait(ctx, u.Host); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.logger.Info("scraping store page", "url", storeURL)
	start := time.Now()

	snap, err := s.source.Render(ctx, u.String(), s.settle)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %s", ErrScrapeTimeout, s.timeout, storeURL)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	pageURL := snap.URL
	if pageURL == "" {
		pageURL = u.String()
	}

	page, err := extract.NewPageFromString(snap.HTML, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	products := s.pipeline.Scrape(ctx, page)

	s.logger.Info("store page scraped",
		"url", storeURL,
		"products", len(products),
		"duration", time.Since(start),
	)

	return &models.ScrapeResult{
		StoreURL:  storeURL,
		Products:  products,
		ScrapedAt: time.Now().UTC(),
	}, nil
}

func parseStoreURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}
