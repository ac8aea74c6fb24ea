package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/emerssive/Chrome-Extension/internal/database"
	"github.com/shopspring/decimal"
)

// parseProductFilter reads the popup's search, filter and paging parameters.
// page is 1-based.
func parseProductFilter(r *http.Request) (database.ProductFilter, int, error) {
	q := r.URL.Query()
	f := database.ProductFilter{Query: q.Get("q")}

	if v := q.Get("registryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, 0, fmt.Errorf("invalid registryId %q", v)
		}
		f.RegistryID = id
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &f.MinPrice},
		{"maxPrice", &f.MaxPrice},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return f, 0, fmt.Errorf("invalid %s %q", p.name, v)
		}
		*p.dst = &d
	}

	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 {
			return f, 0, fmt.Errorf("invalid minRating %q", v)
		}
		f.MinRating = &rating
	}

	f.Limit = database.DefaultPageLimit
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return f, 0, fmt.Errorf("invalid limit %q", v)
		}
		f.Limit = min(limit, database.MaxPageLimit)
	}

	page := 1
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > database.MaxPage {
			return f, 0, fmt.Errorf("invalid page %q", v)
		}
		page = n
	}
	f.Offset = (page - 1) * f.Limit

	return f, page, nil
}
