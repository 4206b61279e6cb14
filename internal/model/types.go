package model

import "time"

// Platform names the marketplace a listing or price sample came from.
type Platform string

const (
	PlatformEBay     Platform = "eBay"
	PlatformPoshmark Platform = "Poshmark"
	PlatformMercari  Platform = "Mercari"
)

// Condition is the item condition as reported by a marketplace.
// Scraped conditions are free text and are carried verbatim.
type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
)

// Period is a trend lookback window.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Listing is one marketplace item summary. Listings are values: adapters
// create them and nothing modifies them afterwards.
type Listing struct {
	Title      string    `json:"title"`
	Price      float64   `json:"price"`
	Platform   Platform  `json:"platform"`
	Condition  Condition `json:"condition,omitempty"`
	URL        string    `json:"url"`
	DateListed time.Time `json:"date_listed"`
}

// PricePoint is one historical sample inside the lookback window.
type PricePoint struct {
	Price     float64   `json:"price"`
	Date      time.Time `json:"date"`
	Platform  Platform  `json:"platform"`
	Condition Condition `json:"condition,omitempty"`
	Sold      bool      `json:"sold"`
}

// MarketTrend summarises one lookback period.
type MarketTrend struct {
	Period       Period  `json:"period"`
	AveragePrice float64 `json:"average_price"`
	Volume       int     `json:"volume"`
	PriceChange  float64 `json:"price_change"` // percentage, signed
}

// PriceRange holds the interquartile range of the sampled prices.
// Min is the 25th percentile and Max the 75th, not the extrema.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceAnalysisResult is the response record for one analysis request.
type PriceAnalysisResult struct {
	SuggestedPrice    float64       `json:"suggested_price"`
	PriceRange        PriceRange    `json:"price_range"`
	ConfidenceScore   float64       `json:"confidence_score"`
	MarketTrends      []MarketTrend `json:"market_trends"`
	PriceHistory      []PricePoint  `json:"price_history"`
	ActiveCompetitors []Listing     `json:"active_competitors"`
	BestDayToList     string        `json:"best_day_to_list"`
	BestTimeToList    string        `json:"best_time_to_list"`
}

// AnalysisRequest is the inbound analysis request.
type AnalysisRequest struct {
	Keywords  string `json:"keywords"`
	Category  string `json:"category,omitempty"`
	Condition string `json:"condition,omitempty"`
	Brand     string `json:"brand,omitempty"`
}

// SearchQuery is what every listing source receives.
type SearchQuery struct {
	Keywords  string
	Condition string
}
