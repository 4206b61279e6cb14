package main

import (
	"log/slog"
	"net/http"

	"github.com/guarzo/resalepricer/internal/aggregate"
	"github.com/guarzo/resalepricer/internal/config"
	"github.com/guarzo/resalepricer/internal/ebay"
	"github.com/guarzo/resalepricer/internal/fetch"
	"github.com/guarzo/resalepricer/internal/history"
	"github.com/guarzo/resalepricer/internal/marketplace"
	"github.com/guarzo/resalepricer/internal/pricing"
)

// buildService wires the listing sources, the history generator and the
// analysis service from configuration. Each scraper gets its own fetcher so
// pacing is per marketplace.
func buildService(cfg *config.Config, logger *slog.Logger) (*pricing.Service, *aggregate.Coordinator) {
	newFetcher := func() *fetch.Fetcher {
		return fetch.New(fetch.Config{
			Delay:     cfg.ScrapeDelay,
			Timeout:   cfg.HTTPTimeout,
			UserAgent: cfg.UserAgent,
		})
	}

	poshmark := marketplace.NewPoshmark(cfg.PoshmarkURL, newFetcher(), logger)
	poshmark.SetMaxResults(cfg.MaxResults)
	mercari := marketplace.NewMercari(cfg.MercariURL, newFetcher(), logger)
	mercari.SetMaxResults(cfg.MaxResults)

	coordinator := aggregate.NewCoordinator(cfg.SourceTimeout, logger, poshmark, mercari)

	if cfg.EBayEnabled() {
		coordinator.Register(ebay.NewClient(ebay.Config{
			ClientID:      cfg.EBay.ClientID,
			ClientSecret:  cfg.EBay.ClientSecret,
			MarketplaceID: cfg.EBay.MarketplaceID,
			Limit:         cfg.EBay.Limit,
			Sandbox:       cfg.EBay.Sandbox,
			HTTPClient:    &http.Client{Timeout: cfg.HTTPTimeout},
		}, logger))
	} else {
		logger.Info("eBay credentials not configured, eBay source disabled")
	}

	generator := history.NewGenerator(cfg.History.Seed, history.Params{
		Days:       cfg.History.Days,
		BasePrice:  cfg.History.BasePrice,
		Trend:      cfg.History.Trend,
		Volatility: cfg.History.Volatility,
	})
	params := generator.Params()
	logger.Debug("history generator configured",
		slog.Int("days", params.Days),
		slog.Float64("base_price", params.BasePrice),
		slog.Float64("trend", params.Trend),
		slog.Float64("volatility", params.Volatility))

	return pricing.NewService(coordinator, generator, logger), coordinator
}
