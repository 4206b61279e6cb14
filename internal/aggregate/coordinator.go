package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/guarzo/resalepricer/internal/marketplace"
	"github.com/guarzo/resalepricer/internal/model"
)

// DefaultSourceTimeout bounds how long one source may take.
const DefaultSourceTimeout = 20 * time.Second

// SourceResult is the outcome of querying one source.
type SourceResult struct {
	Source   string
	Listings []model.Listing
	Err      error
	Elapsed  time.Duration
}

// Coordinator fans a query out to every registered source and merges the
// results. A failing, panicking or slow source only loses its own listings.
type Coordinator struct {
	mu      sync.RWMutex
	sources []marketplace.Searcher
	timeout time.Duration
	logger  *slog.Logger
}

// NewCoordinator creates a coordinator over sources, queried in the given order.
func NewCoordinator(timeout time.Duration, logger *slog.Logger, sources ...marketplace.Searcher) *Coordinator {
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		sources: append([]marketplace.Searcher(nil), sources...),
		timeout: timeout,
		logger:  logger,
	}
}

// Register appends a source after the existing ones.
func (c *Coordinator) Register(source marketplace.Searcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources = append(c.sources, source)
}

// Sources returns the registered source names in registration order.
func (c *Coordinator) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Aggregate returns the listings of all sources concatenated in registration
// order. It never fails; failed sources are logged and contribute nothing.
func (c *Coordinator) Aggregate(ctx context.Context, q model.SearchQuery) []model.Listing {
	results := c.Collect(ctx, q)

	total := 0
	for _, r := range results {
		total += len(r.Listings)
	}

	merged := make([]model.Listing, 0, total)
	for _, r := range results {
		merged = append(merged, r.Listings...)
	}
	return merged
}

// Collect queries every source concurrently and returns one result per
// source, in registration order.
func (c *Coordinator) Collect(ctx context.Context, q model.SearchQuery) []SourceResult {
	c.mu.RLock()
	sources := append([]marketplace.Searcher(nil), c.sources...)
	c.mu.RUnlock()

	results := make([]SourceResult, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source marketplace.Searcher) {
			defer wg.Done()
			results[i] = c.querySource(ctx, source, q)
		}(i, source)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			c.logger.Warn("source failed",
				slog.String("source", r.Source),
				slog.String("keywords", q.Keywords),
				slog.Duration("elapsed", r.Elapsed),
				slog.String("error", r.Err.Error()))
			continue
		}
		c.logger.Debug("source completed",
			slog.String("source", r.Source),
			slog.Int("listings", len(r.Listings)),
			slog.Duration("elapsed", r.Elapsed))
	}

	return results
}

// querySource runs one search under its own timeout. The search runs in a
// separate goroutine so a source that ignores its context is abandoned
// rather than waited on.
func (c *Coordinator) querySource(ctx context.Context, source marketplace.Searcher, q model.SearchQuery) SourceResult {
	name := source.Name()
	start := time.Now()

	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type outcome struct {
		listings []model.Listing
		err      error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("panic in %s search: %v", name, r)}
			}
		}()
		listings, err := source.Search(timeoutCtx, q)
		done <- outcome{listings: listings, err: err}
	}()

	select {
	case out := <-done:
		result := SourceResult{Source: name, Err: out.err, Elapsed: time.Since(start)}
		if out.err == nil {
			result.Listings = out.listings
		}
		return result
	case <-timeoutCtx.Done():
		return SourceResult{
			Source:  name,
			Err:     fmt.Errorf("%s search: %w", name, timeoutCtx.Err()),
			Elapsed: time.Since(start),
		}
	}
}
