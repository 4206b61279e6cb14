package ebay

import (
	"context"

	"github.com/guarzo/resalepricer/internal/marketplace"
	"github.com/guarzo/resalepricer/internal/model"
)

// Provider defines the interface for eBay listing providers
type Provider interface {
	Available() bool
	SearchListings(ctx context.Context, keywords, condition string) ([]model.Listing, error)
}

// Ensure Client implements Provider and can be aggregated with the scrapers
var (
	_ Provider             = (*Client)(nil)
	_ marketplace.Searcher = (*Client)(nil)
)
