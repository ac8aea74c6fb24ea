package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	priceRunPattern    = regexp.MustCompile(`[\d,.]*\d[\d,.]*`)
	decimalPrefix      = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)`)
	ratingPattern      = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	reviewCountPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+`)
)

// ParsePrice reads the first run of digits, commas and periods, drops the
// thousands separators and parses the longest decimal prefix. "1.234.56" reads
// as 1.234 since only the first period is a decimal point.
func ParsePrice(raw string) (decimal.Decimal, bool) {
	run := priceRunPattern.FindString(raw)
	if run == "" {
		return decimal.Zero, false
	}

	run = strings.ReplaceAll(run, ",", "")
	num := decimalPrefix.FindString(run)
	if num == "" {
		return decimal.Zero, false
	}
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}

	price, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}

// ParseRating reads the first decimal number in the text. The value is not
// range checked.
func ParseRating(raw string) (float64, bool) {
	match := ratingPattern.FindString(raw)
	if match == "" {
		return 0, false
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return rating, true
}

// ParseReviewCount reads the first integer in the text. Comma-grouped
// thousands ("1,234 ratings") are read as a single number.
func ParseReviewCount(raw string) (int, bool) {
	match := reviewCountPattern.FindString(raw)
	if match == "" {
		return 0, false
	}

	count, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return count, true
}

// ResolveURL resolves ref against base and returns an absolute http(s) URL.
// Without a base only refs that are already absolute are accepted.
func ResolveURL(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}

	if base != nil {
		u = base.ResolveReference(u)
	}

	if !u.IsAbs() || u.Host == "" {
		return "", false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", false
	}

	return u.String(), true
}
