package analysis

import (
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

// TrendPeriods are the lookback windows in days, in output order.
var TrendPeriods = []struct {
	Period model.Period
	Days   int
}{
	{model.PeriodDay, 1},
	{model.PeriodWeek, 7},
	{model.PeriodMonth, 30},
}

// MarketTrends compares the points inside each lookback window with the
// points before it. A period is omitted when either side is empty or the
// older mean is zero.
func MarketTrends(points []model.PricePoint, now time.Time) []model.MarketTrend {
	trends := make([]model.MarketTrend, 0, len(TrendPeriods))

	for _, tp := range TrendPeriods {
		cutoff := now.AddDate(0, 0, -tp.Days)

		var recent, older []float64
		volume := 0
		for _, p := range points {
			if p.Date.Before(cutoff) {
				older = append(older, p.Price)
				continue
			}
			recent = append(recent, p.Price)
			if p.Sold {
				volume++
			}
		}

		if len(recent) == 0 || len(older) == 0 {
			continue
		}
		olderMean := Mean(older)
		if olderMean == 0 {
			continue
		}
		recentMean := Mean(recent)

		trends = append(trends, model.MarketTrend{
			Period:       tp.Period,
			AveragePrice: model.RoundPrice(recentMean),
			Volume:       volume,
			PriceChange:  model.RoundTo((recentMean-olderMean)/olderMean*100, 1),
		})
	}

	return trends
}
