package analysis

import "github.com/guarzo/resalepricer/internal/model"

// confidenceSampleSize is the number of points at which confidence saturates.
const confidenceSampleSize = 100

// Recommendation is the pricing suggestion derived from a price series.
type Recommendation struct {
	SuggestedPrice float64
	PriceRange     model.PriceRange
	Confidence     float64
}

// Recommend suggests the median price with the interquartile range around
// it. An empty series yields a zero recommendation.
func Recommend(points []model.PricePoint) Recommendation {
	if len(points) == 0 {
		return Recommendation{}
	}

	prices := Prices(points)
	return Recommendation{
		SuggestedPrice: model.RoundPrice(Median(prices)),
		PriceRange: model.PriceRange{
			Min: model.RoundPrice(Percentile(prices, 25)),
			Max: model.RoundPrice(Percentile(prices, 75)),
		},
		Confidence: Confidence(len(points)),
	}
}

// Confidence grows linearly with sample size and saturates at 1.
func Confidence(n int) float64 {
	if n <= 0 {
		return 0
	}
	return model.RoundTo(min(1, float64(n)/confidenceSampleSize), 2)
}
