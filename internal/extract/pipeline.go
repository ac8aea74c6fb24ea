package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emerssive/Chrome-Extension/internal/models"
)

// Page is a settled document together with the URL it was loaded from.
type Page struct {
	Doc *goquery.Document
	URL *url.URL
}

// NewPage parses html. pageURL may be empty, in which case relative links and
// image paths cannot be resolved and are dropped.
func NewPage(r io.Reader, pageURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	page := &Page{Doc: doc}
	if pageURL != "" {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
		page.URL = u
	}

	return page, nil
}

func NewPageFromString(html, pageURL string) (*Page, error) {
	return NewPage(strings.NewReader(html), pageURL)
}

type Options struct {
	Locators      Locators
	Prober        ImageProber
	MaxContainers int
	Concurrency   int
}

func DefaultPipelineOptions() Options {
	return Options{
		Locators:      DefaultLocators(),
		Prober:        NopProber{},
		MaxContainers: MaxContainers,
		Concurrency:   DefaultConcurrency,
	}
}

// Pipeline runs discovery and assembly over a page. It keeps no state between
// calls; every Scrape rescans the document.
type Pipeline struct {
	locators      Locators
	maxContainers int
	assembler     *Assembler
	logger        *slog.Logger
}

func NewPipeline(opts Options, logger *slog.Logger) *Pipeline {
	if opts.MaxContainers <= 0 {
		opts.MaxContainers = MaxContainers
	}
	if len(opts.Locators.Containers) == 0 {
		opts.Locators = DefaultLocators()
	}

	return &Pipeline{
		locators:      opts.Locators,
		maxContainers: opts.MaxContainers,
		assembler:     NewAssembler(opts.Locators, opts.Prober, opts.Concurrency, logger),
		logger:        logger.With("component", "pipeline"),
	}
}

// Scrape returns the candidates found on the page in discovery order. The
// caller decides when the page is settled enough to be scraped.
func (p *Pipeline) Scrape(ctx context.Context, page *Page) []models.Candidate {
	if page == nil || page.Doc == nil {
		return []models.Candidate{}
	}

	containers := DiscoverContainers(page.Doc, p.locators.Containers, p.maxContainers)
	candidates := p.assembler.Assemble(ctx, page, containers)

	p.logger.Info("scrape completed",
		"url", pageURLString(page),
		"containers", len(containers),
		"products", len(candidates),
	)

	return candidates
}

func pageURLString(page *Page) string {
	if page.URL == nil {
		return ""
	}
	return page.URL.String()
}
