package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

const dateLayout = "2006-01-02"

// WriteAnalysisCSV writes a price analysis as CSV sections separated by blank
// lines, each with its own header row. Every cell is escaped against formula
// injection.
func WriteAnalysisCSV(w io.Writer, keywords string, r *model.PriceAnalysisResult) error {
	cw := csv.NewWriter(w)

	for _, section := range analysisSections(keywords, r) {
		if err := cw.WriteAll(EscapeCSVRows(section)); err != nil {
			return fmt.Errorf("writing analysis csv: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func analysisSections(keywords string, r *model.PriceAnalysisResult) [][][]string {
	summary := [][]string{
		{"Keywords", "Suggested Price", "Range Min", "Range Max", "Confidence", "Best Day", "Best Time"},
		{
			keywords,
			money(r.SuggestedPrice),
			money(r.PriceRange.Min),
			money(r.PriceRange.Max),
			strconv.FormatFloat(r.ConfidenceScore, 'f', 2, 64),
			r.BestDayToList,
			r.BestTimeToList,
		},
	}

	trends := [][]string{{"Period", "Average Price", "Volume", "Price Change %"}}
	for _, t := range r.MarketTrends {
		trends = append(trends, []string{
			string(t.Period),
			money(t.AveragePrice),
			strconv.Itoa(t.Volume),
			strconv.FormatFloat(t.PriceChange, 'f', 1, 64),
		})
	}

	history := [][]string{{"Date", "Price", "Platform", "Condition", "Sold"}}
	for _, p := range r.PriceHistory {
		history = append(history, []string{
			p.Date.Format(dateLayout),
			money(p.Price),
			string(p.Platform),
			string(p.Condition),
			strconv.FormatBool(p.Sold),
		})
	}

	competitors := [][]string{{"Title", "Price", "Platform", "Condition", "URL", "Date Listed"}}
	for _, l := range r.ActiveCompetitors {
		competitors = append(competitors, []string{
			l.Title,
			money(l.Price),
			string(l.Platform),
			string(l.Condition),
			l.URL,
			formatDate(l.DateListed),
		})
	}

	blank := [][]string{{}}
	return [][][]string{summary, blank, trends, blank, history, blank, competitors}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
