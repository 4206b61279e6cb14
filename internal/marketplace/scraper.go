package marketplace

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/guarzo/resalepricer/internal/model"
)

// PageFetcher returns the raw body of a results page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// cardParser turns one result card into a listing.
type cardParser func(card *goquery.Selection) (model.Listing, error)

// scrapeCards fetches searchURL, selects result cards and parses at most
// limit of them. Per-card failures skip the card; a fetch or document
// failure yields no listings. Neither is returned to the caller.
func scrapeCards(ctx context.Context, logger *slog.Logger, source string, fetcher PageFetcher, searchURL, cardSelector string, limit int, parse cardParser) []model.Listing {
	body, err := fetcher.Fetch(ctx, searchURL)
	if err != nil {
		logger.Warn("scrape failed", slog.String("source", source), slog.String("error", err.Error()))
		return []model.Listing{}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Warn("parsing results page failed", slog.String("source", source), slog.String("error", err.Error()))
		return []model.Listing{}
	}

	if limit <= 0 {
		limit = MaxResults
	}
	listings := make([]model.Listing, 0, limit)
	doc.Find(cardSelector).EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= limit {
			return false
		}

		listing, err := parse(card)
		if err != nil {
			logger.Debug("skipping result card",
				slog.String("source", source),
				slog.Int("index", i),
				slog.String("error", err.Error()))
			return true
		}

		listings = append(listings, listing)
		return true
	})

	return listings
}

// requiredText returns the trimmed text of the first match of selector
// within card, or a ParseError when it is absent or blank.
func requiredText(card *goquery.Selection, source, selector string) (string, error) {
	sel := card.Find(selector).First()
	if sel.Length() == 0 {
		return "", &ParseError{Source: source, Field: selector}
	}
	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return "", &ParseError{Source: source, Field: selector}
	}
	return text, nil
}

// requiredHref returns the href of the first match of selector as an
// absolute URL rooted at baseURL.
func requiredHref(card *goquery.Selection, source, selector, baseURL string) (string, error) {
	href, ok := card.Find(selector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", &ParseError{Source: source, Field: selector + "[href]"}
	}
	return absoluteURL(baseURL, href), nil
}

func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return strings.TrimSuffix(baseURL, "/") + href
}

// listedToday approximates the listing date; result pages do not expose it.
func listedToday(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
