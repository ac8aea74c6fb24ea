package extract

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"$1,234.56 / item", "1234.56", true},
		{"Free", "", false},
		{"  19.99", "19.99", true},
		{"Rs. 1,299", "1299", true},
		{"1.234.56", "1.234", true},
		{"EUR 45", "45", true},
		{"", "", false},
		{"...", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			price, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, price.String())
				assert.False(t, price.IsNegative())
			}
		})
	}
}

func TestParseRating(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"4.5 out of 5 stars", 4.5, true},
		{"Rated 3 stars", 3, true},
		{"12.5", 12.5, true},
		{".5 stars", 0.5, true},
		{"Rated .75 of 5", 0.75, true},
		{"no rating yet", 0, false},
	}

	for _, tc := range testCases {
		rating, ok := ParseRating(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.expected, rating, tc.input)
	}
}

func TestParseReviewCount(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"(89)", 89, true},
		{"1,234 ratings", 1234, true},
		{"567 reviews", 567, true},
		{"12345", 12345, true},
		{"be the first to review", 0, false},
	}

	for _, tc := range testCases {
		count, ok := ParseReviewCount(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.expected, count, tc.input)
	}
}

func TestResolveURL(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/catalog/shoes?page=2")
	require.NoError(t, err)

	tests := []struct {
		name     string
		base     *url.URL
		ref      string
		expected string
		ok       bool
	}{
		{"absolute path", base, "/p/123", "https://shop.example.com/p/123", true},
		{"relative path", base, "boots.html", "https://shop.example.com/catalog/boots.html", true},
		{"protocol relative", base, "//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg", true},
		{"already absolute", base, "http://other.example.com/x", "http://other.example.com/x", true},
		{"javascript", base, "javascript:void(0)", "", false},
		{"data uri", base, "data:image/gif;base64,R0lGOD", "", false},
		{"empty", base, "  ", "", false},
		{"no base relative", nil, "/p/1", "", false},
		{"no base absolute", nil, "https://a.example.com/p/1", "https://a.example.com/p/1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveURL(tt.base, tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
