package history

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

// Source supplies the historical price series for a query.
type Source interface {
	PriceHistory(ctx context.Context, q model.SearchQuery) ([]model.PricePoint, error)
}

// Defaults used when no parameters are configured.
const (
	DefaultDays       = 90
	DefaultBasePrice  = 100.0
	DefaultTrend      = 0.0
	DefaultVolatility = 0.02
)

// Params shapes one synthetic series.
type Params struct {
	Days       int
	BasePrice  float64
	Trend      float64 // fractional drift across the whole window
	Volatility float64 // standard deviation of the daily noise
}

// DefaultParams returns the parameters used by the analysis service.
func DefaultParams() Params {
	return Params{
		Days:       DefaultDays,
		BasePrice:  DefaultBasePrice,
		Trend:      DefaultTrend,
		Volatility: DefaultVolatility,
	}
}

var (
	platforms  = []model.Platform{model.PlatformEBay, model.PlatformPoshmark, model.PlatformMercari}
	conditions = []model.Condition{model.ConditionNew, model.ConditionLikeNew, model.ConditionGood, model.ConditionFair}
)

// Generator produces random-walk price series. It is safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	rand   *rand.Rand
	params Params
	now    func() time.Time
}

// NewGenerator creates a generator. A zero seed seeds from the clock.
func NewGenerator(seed int64, params Params) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if params.Days <= 0 {
		params.Days = DefaultDays
	}
	return &Generator{
		rand:   rand.New(rand.NewSource(seed)),
		params: params,
		now:    time.Now,
	}
}

// WithClock overrides the generator's notion of now.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Params returns the configured default parameters.
func (g *Generator) Params() Params {
	return g.params
}

// PriceHistory generates a series with the configured parameters. The query
// does not influence the synthetic data.
func (g *Generator) PriceHistory(ctx context.Context, _ model.SearchQuery) ([]model.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.Generate(g.params), nil
}

// Generate returns p.Days daily points, newest first. Point i is dated i days
// before today at midnight. A step that would leave the finite range is
// skipped, and a non-finite base price starts the walk at zero.
func (g *Generator) Generate(p Params) []model.PricePoint {
	if p.Days <= 0 {
		return []model.PricePoint{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	today := midnight(g.now())
	points := make([]model.PricePoint, p.Days)
	current := p.BasePrice
	if !finite(current) {
		current = 0
	}
	n := float64(p.Days)

	for i := range points {
		next := current + current*(p.Trend/n+g.rand.NormFloat64()*p.Volatility)
		if finite(next) {
			current = max(next, 0)
		}
		price := model.RoundPrice(current)

		points[i] = model.PricePoint{
			Price:     price,
			Date:      today.AddDate(0, 0, -i),
			Platform:  platforms[g.rand.Intn(len(platforms))],
			Condition: conditions[g.rand.Intn(len(conditions))],
			Sold:      g.rand.Float64() < SoldProbability(price, p.BasePrice),
		}
	}
	return points
}

// SoldProbability is 1 - price/(base*1.2), clamped to [0, 1].
func SoldProbability(price, base float64) float64 {
	if !(base > 0) || math.IsInf(base, 1) || math.IsNaN(price) {
		return 0
	}
	return min(max(1-price/(base*1.2), 0), 1)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
