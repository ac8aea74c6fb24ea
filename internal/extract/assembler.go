package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/emerssive/Chrome-Extension/internal/models"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 16

// Assembler turns discovered containers into candidates, one goroutine per
// container, and returns them in container order.
type Assembler struct {
	locators    Locators
	prober      ImageProber
	concurrency int
	logger      *slog.Logger
}

func NewAssembler(locators Locators, prober ImageProber, concurrency int, logger *slog.Logger) *Assembler {
	if prober == nil {
		prober = NopProber{}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Assembler{
		locators:    locators,
		prober:      prober,
		concurrency: concurrency,
		logger:      logger.With("component", "assembler"),
	}
}

// Assemble extracts every field of every container. Each container writes only
// its own slot, so completion order does not affect the output order. A
// container that panics is logged and skipped.
func (a *Assembler) Assemble(ctx context.Context, page *Page, containers []*goquery.Selection) []models.Candidate {
	slots := make([]*models.Candidate, len(containers))

	fallbackDescription, _ := MetaDescription(page.Doc)

	var g errgroup.Group
	g.SetLimit(a.concurrency)

	for i, container := range containers {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("container extraction failed",
						"index", i,
						"error", fmt.Sprint(r))
				}
			}()

			slots[i] = a.assembleOne(ctx, page, container, fallbackDescription)
			return nil
		})
	}
	_ = g.Wait()

	candidates := make([]models.Candidate, 0, len(containers))
	for _, c := range slots {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}

	return candidates
}

// assembleOne returns nil when the container lacks a name or a price.
func (a *Assembler) assembleOne(ctx context.Context, page *Page, container *goquery.Selection, fallbackDescription string) *models.Candidate {
	name, hasName := ExtractText(container, a.locators.Name)

	var candidate models.Candidate
	candidate.Name = name

	hasPrice := false
	if priceText, ok := ExtractText(container, a.locators.Price); ok {
		candidate.Price, hasPrice = ParsePrice(priceText)
	}

	if !hasName || !hasPrice {
		return nil
	}

	if description, ok := ExtractText(container, a.locators.Description); ok {
		candidate.Description = &description
	} else if fallbackDescription != "" {
		description := fallbackDescription
		candidate.Description = &description
	}

	if ratingText, ok := ExtractText(container, a.locators.Rating); ok {
		if rating, ok := ParseRating(ratingText); ok {
			candidate.Rating = &rating
		}
	}

	if countText, ok := ExtractText(container, a.locators.ReviewCount); ok {
		if count, ok := ParseReviewCount(countText); ok {
			candidate.ReviewCount = &count
		}
	}

	if href, ok := ExtractLink(container); ok {
		if productURL, ok := ResolveURL(page.URL, href); ok {
			candidate.ProductURL = &productURL
		}
	}

	candidate.ImageURL = a.image(ctx, page, container)

	if !candidate.IsValid() {
		return nil
	}

	return &candidate
}

func (a *Assembler) image(ctx context.Context, page *Page, container *goquery.Selection) *string {
	src, ok := ExtractImageSource(container, a.locators.Image)
	if !ok {
		return nil
	}

	imageURL, ok := ResolveURL(page.URL, src)
	if !ok {
		return nil
	}

	if err := a.prober.Probe(ctx, imageURL); err != nil {
		a.logger.Warn("image probe failed", "url", imageURL, "error", err)
		return nil
	}

	return &imageURL
}
