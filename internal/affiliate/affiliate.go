package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/emerssive/Chrome-Extension/internal/models"
)

var ErrNoBaseURL = errors.New("affiliate base URL not configured")

// Generator derives an affiliate link for a product before it is saved. An
// empty link with a nil error means the product has no affiliate offer.
type Generator interface {
	Generate(ctx context.Context, c models.Candidate) (string, error)
}

// NopGenerator never produces a link.
type NopGenerator struct{}

func (NopGenerator) Generate(context.Context, models.Candidate) (string, error) {
	return "", nil
}

// TemplateGenerator appends the product name as the product query parameter
// of a fixed partner URL.
type TemplateGenerator struct {
	base *url.URL
}

func NewTemplateGenerator(baseURL string) (*TemplateGenerator, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid affiliate base URL %q", baseURL)
	}

	return &TemplateGenerator{base: u}, nil
}

func (g *TemplateGenerator) Generate(_ context.Context, c models.Candidate) (string, error) {
	if c.Name == "" {
		return "", errors.New("product name is required")
	}

	u := *g.base
	q := u.Query()
	q.Set("product", c.Name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// New returns a TemplateGenerator for baseURL, or a NopGenerator when no base
// URL is configured.
func New(baseURL string) (Generator, error) {
	g, err := NewTemplateGenerator(baseURL)
	if errors.Is(err, ErrNoBaseURL) {
		return NopGenerator{}, nil
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
