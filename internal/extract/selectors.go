package extract

// MaxContainers caps the number of containers a single pass will assemble.
const MaxContainers = 200

const (
	ProductLinkLocator     = "a[href]"
	MetaDescriptionLocator = `meta[name="description"]`
)

// ContainerLocators matches product listing containers across known storefronts.
// Order is priority: matches from earlier locators come first in discovery.
var ContainerLocators = []string{
	".s-result-item",                          // Amazon
	".product-item",                           // generic
	".item",                                   // generic
	".product",                                // many storefronts
	`[data-component-type="s-search-result"]`, // Amazon (alternative)
	".grid-product",                           // Shopify
	".product-grid-item",                      // WooCommerce
	".product-card",
	".product-list-item",
	".productListItem",
	".product-wrapper",
	".catalog-product",
	".product-container",
	"li.item.product",
	"div[data-product-id]",
	".grid__item",
}

var ImageLocators = []string{
	"img.s-image", "img.product-image", "img.product-img", `img[itemprop="image"]`,
	".product-photo img", ".product-media img", ".product__image",
	"img.primary-image", "img.main-image", ".product-image-photo",
	"img[data-src]", "img.lazy-image", ".image img",
}

var NameLocators = []string{
	".a-text-normal", ".product-title", ".product-name", `[itemprop="name"]`,
	".product__title", ".card-title", "h2.product-name", ".item-title",
	".product-item-link", ".product-card-title", ".product-info__title",
	`[data-test-id="product-title"]`, ".listing-product-title",
}

var PriceLocators = []string{
	".a-price-whole", ".price", ".product-price", `[itemprop="price"]`,
	".product__price", ".price-box", ".price--withoutTax",
	".price--withTax", "[data-price]", ".sales-price",
	".current-price", ".product-prices", ".price-current",
}

var DescriptionLocators = []string{
	".a-size-base-plus", ".description", ".product-description", `[itemprop="description"]`,
	".product__description", ".product-short-description", ".item-description",
	".product-info__description", ".product-card__description",
	`[data-test-id="product-description"]`, ".listing-product-description",
}

var RatingLocators = []string{
	".a-icon-star-small", ".rating", ".product-rating", `[itemprop="ratingValue"]`,
	".star-rating", ".product-rating-stars", ".rating-stars",
	"[data-rating]", ".product__rating", ".review-rating",
}

var ReviewCountLocators = []string{
	".a-size-base", ".review-count", `[itemprop="reviewCount"]`,
	".rating-count", ".review-number", ".product-rating-count",
	"[data-review-count]", ".product__review-count", ".review-quantity",
}

// ImageAttributes lists the attributes read from a matched image element, in priority order.
// srcset is handled separately since only its first candidate URL is used.
var ImageAttributes = []string{"src", "data-src", "data-lazy-src"}

// Locators bundles every ordered locator list used by one pipeline.
type Locators struct {
	Containers  []string
	Name        []string
	Price       []string
	Image       []string
	Description []string
	Rating      []string
	ReviewCount []string
}

func DefaultLocators() Locators {
	return Locators{
		Containers:  ContainerLocators,
		Name:        NameLocators,
		Price:       PriceLocators,
		Image:       ImageLocators,
		Description: DescriptionLocators,
		Rating:      RatingLocators,
		ReviewCount: ReviewCountLocators,
	}
}
