package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductFilter_Conditions(t *testing.T) {
	t.Run("user only", func(t *testing.T) {
		where, args := ProductFilter{UserID: 9}.conditions()
		assert.Equal(t, "r.user_id = $1", where)
		assert.Equal(t, []any{int64(9)}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		minPrice := decimal.RequireFromString("10")
		maxPrice := decimal.RequireFromString("99.99")
		minRating := 4.0

		where, args := ProductFilter{
			UserID:     9,
			RegistryID: 3,
			Query:      "  lamp ",
			MinPrice:   &minPrice,
			MaxPrice:   &maxPrice,
			MinRating:  &minRating,
		}.conditions()

		assert.Equal(t,
			"r.user_id = $1 AND rp.registry_id = $2 AND (p.name ILIKE $3 OR p.description ILIKE $3)"+
				" AND p.price >= $4 AND p.price <= $5 AND p.rating >= $6",
			where)
		assert.Equal(t, []any{int64(9), int64(3), "%lamp%", minPrice, maxPrice, 4.0}, args)
	})

	t.Run("query wildcards are escaped", func(t *testing.T) {
		_, args := ProductFilter{UserID: 1, Query: `50%_off\`}.conditions()
		assert.Equal(t, `%50\%\_off\\%`, args[1])
	})
}
