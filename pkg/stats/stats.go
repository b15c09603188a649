// Package stats derives read-only statistics from execution history.
// It never mutates execution records or workflow counters.
package stats

import (
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
)

// TrendBucket aggregates the executions started during one calendar day.
type TrendBucket struct {
	Date        string  `json:"date"`
	Success     int     `json:"success"`
	Failed      int     `json:"failed"`
	Total       int     `json:"total"`
	SuccessRate float64 `json:"success_rate"`
}

// Stats summarizes a workflow's execution history over a day window.
type Stats struct {
	WindowDays      int                            `json:"window_days"`
	TotalCount      int                            `json:"total_count"`
	SuccessRate     float64                        `json:"success_rate"`
	AvgDurationMs   float64                        `json:"avg_duration_ms"`
	StatusBreakdown map[models.ExecutionStatus]int `json:"status_breakdown"`
	Trend           []TrendBucket                  `json:"trend"`
}

// WindowStart returns the cutoff for a windowDays-sized window ending at
// now: the start of the oldest bucket's calendar day. Records started
// before it fall outside the window.
func WindowStart(now time.Time, windowDays int) time.Time {
	day := now.Truncate(24 * time.Hour)

	return day.AddDate(0, 0, -(windowDays - 1))
}

// Compute aggregates the given records into a Stats value. The caller is
// expected to pass records already filtered to the window (ListSince with
// WindowStart); records outside it are ignored here as well so the two
// stay consistent. windowDays <= 0 yields a zeroed result with an empty
// trend.
func Compute(records []*models.ExecutionRecord, windowDays int, now time.Time) *Stats {
	result := &Stats{
		WindowDays:      windowDays,
		StatusBreakdown: map[models.ExecutionStatus]int{},
		Trend:           []TrendBucket{},
	}

	if windowDays <= 0 {
		return result
	}

	start := WindowStart(now, windowDays)

	buckets := make([]TrendBucket, windowDays)
	for i := range buckets {
		buckets[i].Date = start.AddDate(0, 0, i).Format("2006-01-02")
	}

	var (
		successCount  int
		durationSum   int64
		durationCount int
	)

	for _, record := range records {
		if record.StartedAt.Before(start) || record.StartedAt.After(now) {
			continue
		}

		result.TotalCount++
		result.StatusBreakdown[record.Status]++

		if record.FinishedAt != nil {
			durationSum += record.DurationMs
			durationCount++
		}

		idx := daysBetween(start, record.StartedAt)
		if idx < 0 || idx >= len(buckets) {
			continue
		}

		buckets[idx].Total++

		switch record.Status {
		case models.ExecutionSuccess:
			successCount++
			buckets[idx].Success++
		case models.ExecutionFailed:
			buckets[idx].Failed++
		}
	}

	if result.TotalCount > 0 {
		result.SuccessRate = float64(successCount) / float64(result.TotalCount) * 100
	}

	if durationCount > 0 {
		result.AvgDurationMs = float64(durationSum) / float64(durationCount)
	}

	for i := range buckets {
		if buckets[i].Total > 0 {
			buckets[i].SuccessRate = float64(buckets[i].Success) / float64(buckets[i].Total) * 100
		}
	}

	result.Trend = buckets

	return result
}

func daysBetween(start, t time.Time) int {
	return int(t.Truncate(24*time.Hour).Sub(start).Hours() / 24)
}
