package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/testutil"
)

type fakeSource struct {
	name     string
	listings []model.Listing
	err      error
	delay    time.Duration
	ignore   bool // ignore context cancellation while delaying
	panicMsg string
	gotQuery model.SearchQuery
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, q model.SearchQuery) ([]model.Listing, error) {
	f.gotQuery = q
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		if f.ignore {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return f.listings, f.err
}

func TestAggregate_ConcatenatesInRegistrationOrder(t *testing.T) {
	factory := testutil.NewTestDataFactory(42)
	posh := &fakeSource{name: "Poshmark", listings: factory.GenerateTestListings(model.PlatformPoshmark, 2)}
	merc := &fakeSource{name: "Mercari", listings: factory.GenerateTestListings(model.PlatformMercari, 3), delay: 20 * time.Millisecond}
	ebay := &fakeSource{name: "eBay", listings: factory.GenerateTestListings(model.PlatformEBay, 1)}

	c := NewCoordinator(time.Second, nil, posh, merc)
	c.Register(ebay)

	got := c.Aggregate(context.Background(), model.SearchQuery{Keywords: "denim jacket", Condition: "Good"})

	require.Len(t, got, 6)
	assert.Equal(t, posh.listings, got[0:2])
	assert.Equal(t, merc.listings, got[2:5])
	assert.Equal(t, ebay.listings, got[5:6])
	assert.Equal(t, []string{"Poshmark", "Mercari", "eBay"}, c.Sources())
	assert.Equal(t, "Good", ebay.gotQuery.Condition)
}

func TestAggregate_FailingSourceIsIsolated(t *testing.T) {
	factory := testutil.NewTestDataFactory(1)
	a := &fakeSource{name: "A", listings: factory.GenerateTestListings(model.PlatformPoshmark, 3)}
	b := &fakeSource{name: "B", err: errors.New("boom"), listings: factory.GenerateTestListings(model.PlatformMercari, 2)}

	c := NewCoordinator(time.Second, nil, a, b)

	var got []model.Listing
	assert.NotPanics(t, func() {
		got = c.Aggregate(context.Background(), model.SearchQuery{Keywords: "denim jacket"})
	})
	assert.Equal(t, a.listings, got)
}

func TestAggregate_AllSourcesFail(t *testing.T) {
	c := NewCoordinator(50*time.Millisecond, nil,
		&fakeSource{name: "err", err: errors.New("network down")},
		&fakeSource{name: "panic", panicMsg: "nil selection"},
		&fakeSource{name: "slow", delay: time.Second},
	)

	got := c.Aggregate(context.Background(), model.SearchQuery{Keywords: "anything"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCollect_TimeoutAbandonsHungSource(t *testing.T) {
	fast := &fakeSource{name: "fast", listings: []model.Listing{{Title: "ok", Price: 10}}}
	hung := &fakeSource{name: "hung", delay: 2 * time.Second, ignore: true}

	c := NewCoordinator(100*time.Millisecond, nil, hung, fast)

	start := time.Now()
	results := c.Collect(context.Background(), model.SearchQuery{Keywords: "x"})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, time.Second, "hung source should not stall the request")
	require.Len(t, results, 2)

	assert.Equal(t, "hung", results[0].Source)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Empty(t, results[0].Listings)

	assert.Equal(t, "fast", results[1].Source)
	assert.NoError(t, results[1].Err)
	assert.Len(t, results[1].Listings, 1)
}

func TestCollect_PanicBecomesError(t *testing.T) {
	c := NewCoordinator(time.Second, nil, &fakeSource{name: "broken", panicMsg: "index out of range"})

	results := c.Collect(context.Background(), model.SearchQuery{Keywords: "x"})
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "index out of range")
}

func TestCollect_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCoordinator(time.Second, nil, &fakeSource{name: "slow", delay: time.Second})
	results := c.Collect(ctx, model.SearchQuery{Keywords: "x"})

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestNewCoordinator_DefaultTimeout(t *testing.T) {
	c := NewCoordinator(0, nil)
	assert.Equal(t, DefaultSourceTimeout, c.timeout)
	assert.Empty(t, c.Aggregate(context.Background(), model.SearchQuery{Keywords: "x"}))
}
