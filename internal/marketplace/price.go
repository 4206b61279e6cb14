package marketplace

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonPriceChars = regexp.MustCompile(`[^\d.]`)

// ParsePrice converts marketplace price text such as "$1,249.99" or
// "US $12" into a non-negative amount. Everything except digits and the
// decimal point is discarded before conversion.
func ParsePrice(text string) (float64, error) {
	cleaned := nonPriceChars.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return 0, &ParseError{Field: "price", Err: fmt.Errorf("no digits in %q", text)}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, &ParseError{Field: "price", Err: fmt.Errorf("invalid amount %q: %w", cleaned, err)}
	}

	return d.InexactFloat64(), nil
}
