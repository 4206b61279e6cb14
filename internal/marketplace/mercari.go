package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/guarzo/resalepricer/internal/model"
)

const mercariBaseURL = "https://www.mercari.com"

// Mercari scrapes the Mercari public search page.
type Mercari struct {
	baseURL    string
	fetcher    PageFetcher
	maxResults int
	logger     *slog.Logger
	now        func() time.Time
}

// NewMercari creates a Mercari adapter. An empty baseURL selects the live site.
func NewMercari(baseURL string, fetcher PageFetcher, logger *slog.Logger) *Mercari {
	if baseURL == "" {
		baseURL = mercariBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mercari{
		baseURL:    baseURL,
		fetcher:    fetcher,
		maxResults: MaxResults,
		logger:     logger,
		now:        time.Now,
	}
}

// SetMaxResults changes how many result cards are inspected per search.
func (m *Mercari) SetMaxResults(n int) {
	if n > 0 {
		m.maxResults = n
	}
}

func (m *Mercari) Name() string {
	return string(model.PlatformMercari)
}

// Search never returns an error: fetch failures yield an empty slice.
func (m *Mercari) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	searchURL := fmt.Sprintf("%s/search?keyword=%s", m.baseURL, url.QueryEscape(q.Keywords))
	listed := listedToday(m.now())

	return scrapeCards(ctx, m.logger, m.Name(), m.fetcher, searchURL, "div.item-cell", m.maxResults, func(card *goquery.Selection) (model.Listing, error) {
		return m.parseCard(card, listed)
	}), nil
}

func (m *Mercari) parseCard(card *goquery.Selection, listed time.Time) (model.Listing, error) {
	title, err := requiredText(card, m.Name(), "h3.item-name")
	if err != nil {
		return model.Listing{}, err
	}
	priceText, err := requiredText(card, m.Name(), "div.item-price")
	if err != nil {
		return model.Listing{}, err
	}
	link, err := requiredHref(card, m.Name(), "a.item-link", m.baseURL)
	if err != nil {
		return model.Listing{}, err
	}

	price, err := ParsePrice(priceText)
	if err != nil {
		return model.Listing{}, &ParseError{Source: m.Name(), Field: "price", Err: err}
	}

	// Condition is optional on Mercari cards.
	condition := strings.TrimSpace(card.Find("div.item-condition").First().Text())

	return model.Listing{
		Title:      title,
		Price:      price,
		Platform:   model.PlatformMercari,
		Condition:  model.Condition(condition),
		URL:        link,
		DateListed: listed,
	}, nil
}
