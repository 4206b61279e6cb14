package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/guarzo/resalepricer/internal/model"
)

const poshmarkBaseURL = "https://poshmark.com"

// Poshmark scrapes the Poshmark public search page.
type Poshmark struct {
	baseURL    string
	fetcher    PageFetcher
	maxResults int
	logger     *slog.Logger
	now        func() time.Time
}

// NewPoshmark creates a Poshmark adapter. An empty baseURL selects the live site.
func NewPoshmark(baseURL string, fetcher PageFetcher, logger *slog.Logger) *Poshmark {
	if baseURL == "" {
		baseURL = poshmarkBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poshmark{
		baseURL:    baseURL,
		fetcher:    fetcher,
		maxResults: MaxResults,
		logger:     logger,
		now:        time.Now,
	}
}

// SetMaxResults changes how many result cards are inspected per search.
func (p *Poshmark) SetMaxResults(n int) {
	if n > 0 {
		p.maxResults = n
	}
}

func (p *Poshmark) Name() string {
	return string(model.PlatformPoshmark)
}

// Search never returns an error: fetch failures yield an empty slice.
func (p *Poshmark) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&type=listings", p.baseURL, url.QueryEscape(q.Keywords))
	listed := listedToday(p.now())

	return scrapeCards(ctx, p.logger, p.Name(), p.fetcher, searchURL, "div.card", p.maxResults, func(card *goquery.Selection) (model.Listing, error) {
		return p.parseCard(card, listed)
	}), nil
}

func (p *Poshmark) parseCard(card *goquery.Selection, listed time.Time) (model.Listing, error) {
	title, err := requiredText(card, p.Name(), "div.title")
	if err != nil {
		return model.Listing{}, err
	}
	priceText, err := requiredText(card, p.Name(), "div.price")
	if err != nil {
		return model.Listing{}, err
	}
	link, err := requiredHref(card, p.Name(), "a.tile", p.baseURL)
	if err != nil {
		return model.Listing{}, err
	}

	price, err := ParsePrice(priceText)
	if err != nil {
		return model.Listing{}, &ParseError{Source: p.Name(), Field: "price", Err: err}
	}

	return model.Listing{
		Title:      title,
		Price:      price,
		Platform:   model.PlatformPoshmark,
		URL:        link,
		DateListed: listed,
	}, nil
}
