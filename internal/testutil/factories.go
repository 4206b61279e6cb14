package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

// TestDataFactory provides methods for generating dynamic test data
type TestDataFactory struct {
	rand *rand.Rand
}

// NewTestDataFactory creates a new test data factory with a seeded random generator
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateTestToken generates a random test token
func (f *TestDataFactory) GenerateTestToken() string {
	return fmt.Sprintf("test-token-%d", f.rand.Int63())
}

// GenerateTestURL generates a test URL for the given service and resource
func (f *TestDataFactory) GenerateTestURL(service, resource string) string {
	return fmt.Sprintf("https://%s.test.local/%s/%d", service, resource, f.rand.Int63())
}

// GenerateTestPrice generates a random price between $5 and $500
func (f *TestDataFactory) GenerateTestPrice() float64 {
	return model.RoundPrice(5 + f.rand.Float64()*495)
}

// GenerateTestPlatform picks one of the known marketplaces
func (f *TestDataFactory) GenerateTestPlatform() model.Platform {
	platforms := []model.Platform{model.PlatformEBay, model.PlatformPoshmark, model.PlatformMercari}
	return platforms[f.rand.Intn(len(platforms))]
}

// GenerateTestCondition picks one of the standard conditions
func (f *TestDataFactory) GenerateTestCondition() model.Condition {
	conditions := []model.Condition{model.ConditionNew, model.ConditionLikeNew, model.ConditionGood, model.ConditionFair}
	return conditions[f.rand.Intn(len(conditions))]
}

// GenerateTestListing generates a listing for the given platform
func (f *TestDataFactory) GenerateTestListing(platform model.Platform) model.Listing {
	items := []string{"Test Denim Jacket", "Test Leather Boots", "Test Silk Scarf", "Test Wool Coat", "Test Canvas Tote"}
	return model.Listing{
		Title:      items[f.rand.Intn(len(items))],
		Price:      f.GenerateTestPrice(),
		Platform:   platform,
		Condition:  f.GenerateTestCondition(),
		URL:        f.GenerateTestURL(string(platform), "listing"),
		DateListed: time.Now().AddDate(0, 0, -f.rand.Intn(30)),
	}
}

// GenerateTestListings generates n listings for the given platform
func (f *TestDataFactory) GenerateTestListings(platform model.Platform, n int) []model.Listing {
	listings := make([]model.Listing, n)
	for i := range listings {
		listings[i] = f.GenerateTestListing(platform)
	}
	return listings
}

// GenerateTestSeries generates n daily price points ending at now, newest first.
// soldRatio controls the fraction of points marked sold.
func (f *TestDataFactory) GenerateTestSeries(n int, now time.Time, soldRatio float64) []model.PricePoint {
	points := make([]model.PricePoint, n)
	for i := range points {
		points[i] = model.PricePoint{
			Price:     f.GenerateTestPrice(),
			Date:      now.AddDate(0, 0, -i),
			Platform:  f.GenerateTestPlatform(),
			Condition: f.GenerateTestCondition(),
			Sold:      f.rand.Float64() < soldRatio,
		}
	}
	return points
}

// FlatSeries returns n daily points ending at now, all at the same price.
func FlatSeries(n int, price float64, now time.Time) []model.PricePoint {
	points := make([]model.PricePoint, n)
	for i := range points {
		points[i] = model.PricePoint{
			Price:    price,
			Date:     now.AddDate(0, 0, -i),
			Platform: model.PlatformEBay,
			Sold:     i%3 == 0,
		}
	}
	return points
}
