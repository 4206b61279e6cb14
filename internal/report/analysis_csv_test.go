package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

func sampleAnalysis() *model.PriceAnalysisResult {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &model.PriceAnalysisResult{
		SuggestedPrice:  48.5,
		PriceRange:      model.PriceRange{Min: 40.25, Max: 55},
		ConfidenceScore: 0.9,
		MarketTrends: []model.MarketTrend{
			{Period: model.PeriodWeek, AveragePrice: 49.1, Volume: 3, PriceChange: -2.4},
		},
		PriceHistory: []model.PricePoint{
			{Price: 49, Date: day, Platform: model.PlatformEBay, Condition: model.ConditionGood, Sold: true},
			{Price: 47.5, Date: day.AddDate(0, 0, -1), Platform: model.PlatformMercari, Condition: model.ConditionNew},
		},
		ActiveCompetitors: []model.Listing{
			{Title: "=HYPERLINK(\"evil\")", Price: 45, Platform: model.PlatformPoshmark, URL: "https://poshmark.com/listing/1", DateListed: day},
		},
		BestDayToList:  "Tuesday",
		BestTimeToList: "00:00",
	}
}

func TestWriteAnalysisCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysisCSV(&buf, "denim jacket", sampleAnalysis()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	// csv.Reader skips blank lines: summary(2) + trends(2) + history(3) + competitors(2)
	if len(records) != 9 {
		t.Fatalf("expected 9 records, got %d: %v", len(records), records)
	}

	summary := records[1]
	if summary[0] != "denim jacket" || summary[1] != "48.50" || summary[4] != "0.90" || summary[5] != "Tuesday" {
		t.Errorf("unexpected summary row %v", summary)
	}

	trend := records[3]
	if trend[0] != "week" || trend[3] != "-2.4" {
		t.Errorf("unexpected trend row %v", trend)
	}

	if records[5][0] != "2026-03-10" || records[5][4] != "true" {
		t.Errorf("unexpected history row %v", records[5])
	}

	competitor := records[8]
	if !strings.HasPrefix(competitor[0], "'=") {
		t.Errorf("formula title not escaped: %q", competitor[0])
	}
	if competitor[4] != "https://poshmark.com/listing/1" {
		t.Errorf("unexpected url %q", competitor[4])
	}
}

func TestWriteAnalysisCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAnalysisCSV(&buf, "boots", &model.PriceAnalysisResult{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Title,Price,Platform") {
		t.Errorf("competitor header missing:\n%s", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteAnalysisCSV_WriterError(t *testing.T) {
	if err := WriteAnalysisCSV(failingWriter{}, "boots", sampleAnalysis()); err == nil {
		t.Error("expected error from failing writer")
	}
}
