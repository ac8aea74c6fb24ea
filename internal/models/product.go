package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candidate is a product assembled from one listing container on a scraped page.
// Optional fields are nil when absent and serialize as null.
type Candidate struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description"`
	ImageURL    *string         `json:"imageUrl"`
	Rating      *float64        `json:"rating"`
	ReviewCount *int            `json:"reviewCount"`
	ProductURL  *string         `json:"productUrl"`
}

// SavedProduct is a candidate after it has been persisted to a registry.
type SavedProduct struct {
	ID            int64           `json:"id"`
	RegistryID    int64           `json:"registryId"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Description   *string         `json:"description"`
	ImageURL      *string         `json:"imageUrl"`
	Rating        *float64        `json:"rating"`
	ReviewCount   *int            `json:"reviewCount"`
	ProductURL    *string         `json:"productUrl"`
	StoreURL      *string         `json:"storeUrl"`
	AffiliateLink *string         `json:"affiliateLink"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Registry struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ScrapeResult is the outcome of one extraction pass over a store page.
type ScrapeResult struct {
	StoreURL  string      `json:"storeUrl"`
	Products  []Candidate `json:"products"`
	ScrapedAt time.Time   `json:"scrapedAt"`
}

// IsValid reports whether the candidate satisfies the mandatory name and price rule.
func (c *Candidate) IsValid() bool {
	return c.Name != "" && !c.Price.IsNegative()
}

// Candidate returns the scraped fields of a saved product.
func (p *SavedProduct) Candidate() Candidate {
	return Candidate{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		ProductURL:  p.ProductURL,
	}
}

func (r *Registry) Validate() []string {
	var errors []string

	if r.Name == "" {
		errors = append(errors, "Name is required")
	}

	if len(r.Name) > 200 {
		errors = append(errors, "Name must be at most 200 characters")
	}

	return errors
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
