package analysis

import (
	"fmt"
	"time"

	"github.com/guarzo/resalepricer/internal/model"
)

// Defaults reported when nothing in the series sold.
const (
	DefaultBestDay  = "Monday"
	DefaultBestHour = 12
)

// BestTimeToList returns the weekday and hour ("HH:00") on which the most
// sold points fall. Ties go to the earlier weekday (Sunday first) and the
// lower hour.
func BestTimeToList(points []model.PricePoint) (day, hour string) {
	var days [7]int
	var hours [24]int
	sold := 0

	for _, p := range points {
		if !p.Sold {
			continue
		}
		sold++
		days[p.Date.Weekday()]++
		hours[p.Date.Hour()]++
	}

	if sold == 0 {
		return DefaultBestDay, FormatHour(DefaultBestHour)
	}

	bestDay := 0
	for d := 1; d < len(days); d++ {
		if days[d] > days[bestDay] {
			bestDay = d
		}
	}
	bestHour := 0
	for h := 1; h < len(hours); h++ {
		if hours[h] > hours[bestHour] {
			bestHour = h
		}
	}

	return time.Weekday(bestDay).String(), FormatHour(bestHour)
}

// FormatHour renders a 24-hour clock hour as "HH:00".
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
