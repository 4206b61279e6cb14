package marketplace

import (
	"context"
	"fmt"

	"github.com/guarzo/resalepricer/internal/model"
)

// MaxResults caps how many result cards an adapter inspects per search.
const MaxResults = 10

// Searcher is implemented by every listing source: page scrapers and API clients.
type Searcher interface {
	Name() string
	Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error)
}

// ParseError reports a result card that could not be turned into a listing.
type ParseError struct {
	Source string
	Field  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: parsing %s: %v", e.Source, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: missing %s", e.Source, e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
