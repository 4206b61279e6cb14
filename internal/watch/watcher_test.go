package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/testutil"
)

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.PriceAnalysisResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*model.PriceAnalysisResult)
	return result, args.Error(1)
}

type countingAnalyzer struct {
	calls atomic.Int32
}

func (c *countingAnalyzer) Analyze(context.Context, model.AnalysisRequest) (*model.PriceAnalysisResult, error) {
	c.calls.Add(1)
	return &model.PriceAnalysisResult{}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_Validation(t *testing.T) {
	_, err := New("@every 1h", []string{" ", ""}, new(MockAnalyzer), quietLogger())
	assert.Error(t, err)

	_, err = New("not a schedule", []string{"boots"}, new(MockAnalyzer), quietLogger())
	assert.Error(t, err)

	w, err := New("", []string{" boots "}, new(MockAnalyzer), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, w.schedule)
	assert.Equal(t, []string{"boots"}, w.keywords)
}

func TestRunOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	result := &model.PriceAnalysisResult{
		SuggestedPrice:    40,
		PriceRange:        model.PriceRange{Min: 35, Max: 45},
		ConfidenceScore:   0.3,
		PriceHistory:      testutil.FlatSeries(30, 40, now),
		ActiveCompetitors: testutil.NewTestDataFactory(1).GenerateTestListings(model.PlatformMercari, 4),
		MarketTrends: []model.MarketTrend{
			{Period: model.PeriodDay, PriceChange: 1},
			{Period: model.PeriodWeek, PriceChange: -2.5},
		},
	}

	analyzer := new(MockAnalyzer)
	analyzer.On("Analyze", mock.Anything, model.AnalysisRequest{Keywords: "denim jacket"}).Return(result, nil)
	analyzer.On("Analyze", mock.Anything, model.AnalysisRequest{Keywords: "wool coat"}).Return(nil, errors.New("boom"))

	w, err := New("@every 1h", []string{"denim jacket", "wool coat"}, analyzer, quietLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	w.SetProgressWriter(&out)

	summaries := w.RunOnce(context.Background())
	require.Len(t, summaries, 2)

	first := summaries[0]
	assert.NoError(t, first.Err)
	assert.Equal(t, "denim jacket", first.Keywords)
	assert.Equal(t, 40.0, first.SuggestedPrice)
	assert.Equal(t, 4, first.Competitors)
	assert.Equal(t, -2.5, first.WeekChange)
	assert.Zero(t, first.Volatility, "flat series has no volatility")

	assert.Error(t, summaries[1].Err)
	assert.Equal(t, "wool coat", summaries[1].Keywords)

	assert.Contains(t, out.String(), "2/2")
	assert.Contains(t, out.String(), "1 failed")

	analyzer.AssertExpectations(t)
}

func TestRunOnce_CancelledContext(t *testing.T) {
	analyzer := new(MockAnalyzer)
	w, err := New("@every 1h", []string{"a", "b"}, analyzer, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries := w.RunOnce(ctx)
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.ErrorIs(t, s.Err, context.Canceled)
	}
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestStartStop(t *testing.T) {
	analyzer := &countingAnalyzer{}
	w, err := New("@every 1s", []string{"boots"}, analyzer, quietLogger())
	require.NoError(t, err)

	w.Start()
	assert.False(t, w.NextRun().IsZero())

	assert.Eventually(t, func() bool { return analyzer.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	select {
	case <-w.Stop().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
