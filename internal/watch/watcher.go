package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/guarzo/resalepricer/internal/analysis"
	"github.com/guarzo/resalepricer/internal/model"
	"github.com/guarzo/resalepricer/internal/progress"
)

// DefaultSchedule runs the watch list hourly.
const DefaultSchedule = "@every 1h"

// Analyzer runs one price analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.PriceAnalysisResult, error)
}

// Summary is the outcome of analyzing one watched keyword.
type Summary struct {
	Keywords       string
	SuggestedPrice float64
	PriceRange     model.PriceRange
	Competitors    int
	Confidence     float64
	Volatility     float64
	WeekChange     float64
	Err            error
}

// Watcher re-analyzes a fixed keyword list on a cron schedule and logs a
// one-line summary per keyword. Nothing is persisted between runs.
type Watcher struct {
	cron        *cron.Cron
	schedule    string
	keywords    []string
	analyzer    Analyzer
	timeout     time.Duration
	logger      *slog.Logger
	progressOut io.Writer

	mu      sync.Mutex
	running bool
}

// New creates a watcher. The schedule uses standard cron syntax or
// descriptors such as "@every 30m".
func New(schedule string, keywords []string, analyzer Analyzer, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultSchedule
	}

	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("watch list is empty")
	}

	w := &Watcher{
		cron:     cron.New(),
		schedule: schedule,
		keywords: cleaned,
		analyzer: analyzer,
		timeout:  5 * time.Minute,
		logger:   logger,
	}

	if _, err := w.cron.AddFunc(schedule, w.tick); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", schedule, err)
	}
	return w, nil
}

// SetProgressWriter draws a progress bar to out during each run.
func (w *Watcher) SetProgressWriter(out io.Writer) {
	w.progressOut = out
}

// Start begins the schedule in the background.
func (w *Watcher) Start() {
	w.logger.Info("watch started",
		slog.String("schedule", w.schedule),
		slog.Int("keywords", len(w.keywords)))
	w.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// running job has finished.
func (w *Watcher) Stop() context.Context {
	return w.cron.Stop()
}

// NextRun reports the next scheduled run, or the zero time before Start.
func (w *Watcher) NextRun() time.Time {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (w *Watcher) tick() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Warn("previous watch run still in progress, skipping")
		return
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.RunOnce(ctx)
}

// RunOnce analyzes every watched keyword sequentially and returns one
// summary per keyword in list order.
func (w *Watcher) RunOnce(ctx context.Context) []Summary {
	summaries := make([]Summary, 0, len(w.keywords))

	bar := progress.New(w.progressOut, "Analyzing watch list", len(w.keywords))
	bar.Start()
	defer bar.Finish()

	for _, kw := range w.keywords {
		if ctx.Err() != nil {
			summaries = append(summaries, Summary{Keywords: kw, Err: ctx.Err()})
			bar.Step(false)
			continue
		}

		result, err := w.analyzer.Analyze(ctx, model.AnalysisRequest{Keywords: kw})
		if err != nil {
			w.logger.Warn("watch analysis failed",
				slog.String("keywords", kw),
				slog.String("error", err.Error()))
			summaries = append(summaries, Summary{Keywords: kw, Err: err})
			bar.Step(false)
			continue
		}

		s := summarize(kw, result)
		w.logger.Info("watch",
			slog.String("keywords", s.Keywords),
			slog.Float64("suggested_price", s.SuggestedPrice),
			slog.Float64("range_min", s.PriceRange.Min),
			slog.Float64("range_max", s.PriceRange.Max),
			slog.Int("competitors", s.Competitors),
			slog.Float64("confidence", s.Confidence),
			slog.Float64("volatility", s.Volatility),
			slog.Float64("week_change_pct", s.WeekChange))
		summaries = append(summaries, s)
		bar.Step(true)
	}
	return summaries
}

func summarize(keywords string, r *model.PriceAnalysisResult) Summary {
	s := Summary{
		Keywords:       keywords,
		SuggestedPrice: r.SuggestedPrice,
		PriceRange:     r.PriceRange,
		Competitors:    len(r.ActiveCompetitors),
		Confidence:     r.ConfidenceScore,
		Volatility:     model.RoundTo(analysis.CoefficientOfVariation(analysis.Prices(r.PriceHistory)), 4),
	}
	for _, t := range r.MarketTrends {
		if t.Period == model.PeriodWeek {
			s.WeekChange = t.PriceChange
		}
	}
	return s
}
