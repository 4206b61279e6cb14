package analysis

import (
	"math"

	"github.com/guarzo/resalepricer/internal/model"
)

// SanitizeConfig holds the bounds for accepting a listing price.
type SanitizeConfig struct {
	MinPriceUSD float64 // listings below this are dropped
	MaxPriceUSD float64 // listings above this are dropped; 0 disables the cap
}

// DefaultSanitizeConfig accepts any finite, non-negative price up to $100,000.
func DefaultSanitizeConfig() *SanitizeConfig {
	return &SanitizeConfig{
		MinPriceUSD: 0,
		MaxPriceUSD: 100_000,
	}
}

// ValidPrice reports whether price passes the sanitization bounds.
func ValidPrice(price float64, config *SanitizeConfig) bool {
	if config == nil {
		config = DefaultSanitizeConfig()
	}

	// NaN, Inf or negative
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return false
	}
	if price < config.MinPriceUSD {
		return false
	}
	if config.MaxPriceUSD > 0 && price > config.MaxPriceUSD {
		return false
	}
	return true
}

// SanitizeListings drops listings with prices outside the configured bounds,
// preserving order. The result is never nil.
func SanitizeListings(listings []model.Listing, config *SanitizeConfig) []model.Listing {
	sanitized := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if ValidPrice(l.Price, config) {
			sanitized = append(sanitized, l)
		}
	}
	return sanitized
}
