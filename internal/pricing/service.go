package pricing

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/guarzo/resalepricer/internal/analysis"
	"github.com/guarzo/resalepricer/internal/history"
	"github.com/guarzo/resalepricer/internal/model"
)

// Aggregator merges listings from every configured marketplace.
type Aggregator interface {
	Aggregate(ctx context.Context, q model.SearchQuery) []model.Listing
}

// Service answers price analysis requests.
type Service struct {
	aggregator Aggregator
	history    history.Source
	sanitize   *analysis.SanitizeConfig
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a service over the given listing aggregator and price
// history source.
func NewService(aggregator Aggregator, source history.Source, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		aggregator: aggregator,
		history:    source,
		sanitize:   analysis.DefaultSanitizeConfig(),
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the time used for trend windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithSanitizeConfig sets the price bounds applied to competitor listings and
// history points.
func (s *Service) WithSanitizeConfig(cfg *analysis.SanitizeConfig) *Service {
	s.sanitize = cfg
	return s
}

// Analyze validates req, gathers competitor listings and price history
// concurrently and derives the pricing recommendation. Only a
// *ValidationError is ever returned; source failures reduce the data the
// result is built from.
func (s *Service) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.PriceAnalysisResult, error) {
	req, err := ValidateRequest(req)
	if err != nil {
		return nil, err
	}

	q := searchQuery(req)
	start := time.Now()

	var (
		wg          sync.WaitGroup
		competitors []model.Listing
		points      []model.PricePoint
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		competitors = s.aggregator.Aggregate(ctx, q)
	}()
	go func() {
		defer wg.Done()
		points = s.priceHistory(ctx, q)
	}()
	wg.Wait()

	competitors = analysis.SanitizeListings(competitors, s.sanitize)

	slices.SortStableFunc(points, func(a, b model.PricePoint) int {
		return b.Date.Compare(a.Date)
	})

	rec := analysis.Recommend(points)
	bestDay, bestTime := analysis.BestTimeToList(points)

	result := &model.PriceAnalysisResult{
		SuggestedPrice:    rec.SuggestedPrice,
		PriceRange:        rec.PriceRange,
		ConfidenceScore:   rec.Confidence,
		MarketTrends:      analysis.MarketTrends(points, s.now()),
		PriceHistory:      points,
		ActiveCompetitors: competitors,
		BestDayToList:     bestDay,
		BestTimeToList:    bestTime,
	}

	s.logger.Info("price analysis completed",
		slog.String("keywords", q.Keywords),
		slog.String("category", req.Category),
		slog.Int("competitors", len(competitors)),
		slog.Int("history_points", len(points)),
		slog.Float64("suggested_price", result.SuggestedPrice),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// priceHistory never fails; an unavailable source yields an empty series.
// Points whose price fails sanitization are dropped.
func (s *Service) priceHistory(ctx context.Context, q model.SearchQuery) []model.PricePoint {
	if s.history == nil {
		return []model.PricePoint{}
	}

	points, err := s.history.PriceHistory(ctx, q)
	if err != nil {
		s.logger.Warn("price history unavailable",
			slog.String("keywords", q.Keywords),
			slog.String("error", err.Error()))
		return []model.PricePoint{}
	}
	valid := make([]model.PricePoint, 0, len(points))
	for _, p := range points {
		if !analysis.ValidPrice(p.Price, s.sanitize) {
			continue
		}
		p.Price = model.RoundPrice(p.Price)
		valid = append(valid, p)
	}
	if dropped := len(points) - len(valid); dropped > 0 {
		s.logger.Warn("dropped invalid price history points",
			slog.String("keywords", q.Keywords),
			slog.Int("dropped", dropped))
	}
	return valid
}
