package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/ratelimit"
)

const (
	searchPath           = "/buy/browse/v1/item_summary/search"
	defaultMarketplaceID = "EBAY_US"
	defaultLimit         = 100
)

// Config holds Browse API client settings.
type Config struct {
	ClientID      string
	ClientSecret  string
	MarketplaceID string
	Limit         int
	Sandbox       bool
	BaseURL       string // overrides the production/sandbox host
	HTTPClient    *http.Client
	Limiter       *ratelimit.Limiter
}

// Client searches active eBay listings through the Browse API.
type Client struct {
	baseURL       string
	marketplaceID string
	limit         int
	httpClient    *http.Client
	tokens        *TokenSource
	limiter       *ratelimit.Limiter
	logger        *slog.Logger
}

// browse API item_summary/search response, trimmed to what we read
type searchResponse struct {
	Total         int           `json:"total"`
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID           string `json:"itemId"`
	Title            string `json:"title"`
	Condition        string `json:"condition"`
	ItemWebURL       string `json:"itemWebUrl"`
	ItemCreationDate string `json:"itemCreationDate"`
	Price            *struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = productionAPIURL
		if cfg.Sandbox {
			baseURL = sandboxAPIURL
		}
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	marketplaceID := cfg.MarketplaceID
	if marketplaceID == "" {
		marketplaceID = defaultMarketplaceID
	}

	limit := cfg.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultLimit
	}

	limiter := cfg.Limiter
	if limiter == nil {
		// Browse API basic tier: 5,000 calls/day. Allow small bursts.
		limiter = ratelimit.NewLimiter(3, 16*time.Second)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:       baseURL,
		marketplaceID: marketplaceID,
		limit:         limit,
		httpClient:    httpClient,
		tokens:        NewTokenSource(cfg.ClientID, cfg.ClientSecret, baseURL, httpClient),
		limiter:       limiter,
		logger:        logger,
	}
}

func (c *Client) Available() bool {
	return c.tokens.clientID != "" && c.tokens.clientSecret != ""
}

func (c *Client) Name() string {
	return string(model.PlatformEBay)
}

// Search implements marketplace.Searcher. Every failure degrades to an
// empty result and a logged warning.
func (c *Client) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	if !c.Available() {
		c.logger.Debug("ebay search skipped: credentials not configured")
		return []model.Listing{}, nil
	}

	listings, err := c.SearchListings(ctx, q.Keywords, q.Condition)
	if err != nil {
		c.logger.Warn("ebay search failed", slog.String("keywords", q.Keywords), slog.String("error", err.Error()))
		return []model.Listing{}, nil
	}
	return listings, nil
}

// SearchListings queries active listings matching keywords and an optional
// condition. Items with an unusable price are skipped.
func (c *Client) SearchListings(ctx context.Context, keywords, condition string) ([]model.Listing, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.WaitContext(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	query := strings.TrimSpace(keywords)
	if condition = strings.TrimSpace(condition); condition != "" {
		query += " " + condition
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.marketplaceID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eBay API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
		return nil, &AuthError{StatusCode: resp.StatusCode, Err: fmt.Errorf("access token rejected")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eBay API returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse eBay response: %w", err)
	}

	now := time.Now()
	listings := make([]model.Listing, 0, len(result.ItemSummaries))
	for _, item := range result.ItemSummaries {
		listing, err := parseItem(item, now)
		if err != nil {
			c.logger.Debug("skipping ebay item", slog.String("item_id", item.ItemID), slog.String("error", err.Error()))
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func parseItem(item itemSummary, now time.Time) (model.Listing, error) {
	if item.Title == "" {
		return model.Listing{}, fmt.Errorf("missing title")
	}
	if item.Price == nil || item.Price.Value == "" {
		return model.Listing{}, fmt.Errorf("missing price")
	}

	price, err := strconv.ParseFloat(item.Price.Value, 64)
	if err != nil || price < 0 {
		return model.Listing{}, fmt.Errorf("invalid price %q", item.Price.Value)
	}

	listed := now
	if item.ItemCreationDate != "" {
		if t, err := time.Parse(time.RFC3339, item.ItemCreationDate); err == nil {
			listed = t
		}
	}

	return model.Listing{
		Title:      item.Title,
		Price:      price,
		Platform:   model.PlatformEBay,
		Condition:  model.Condition(item.Condition),
		URL:        item.ItemWebURL,
		DateListed: listed,
	}, nil
}
