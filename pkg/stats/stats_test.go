package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/stats"
)

func finished(start time.Time, status models.ExecutionStatus, durationMs int64) *models.ExecutionRecord {
	end := start.Add(time.Duration(durationMs) * time.Millisecond)

	return &models.ExecutionRecord{
		ID:         "exec-" + start.Format("150405"),
		WorkflowID: "wf-1",
		Status:     status,
		StartedAt:  start,
		FinishedAt: &end,
		DurationMs: durationMs,
	}
}

func TestComputeEmptyWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	result := stats.Compute(nil, 7, now)

	assert.Equal(t, 0, result.TotalCount)
	assert.Zero(t, result.SuccessRate)
	assert.Zero(t, result.AvgDurationMs)
	require.Len(t, result.Trend, 7)

	for _, bucket := range result.Trend {
		assert.Zero(t, bucket.Total)
		assert.Zero(t, bucket.Success)
		assert.Zero(t, bucket.Failed)
		assert.Zero(t, bucket.SuccessRate)
	}

	assert.Equal(t, "2026-03-04", result.Trend[0].Date)
	assert.Equal(t, "2026-03-10", result.Trend[6].Date)

	again := stats.Compute(nil, 7, now)
	assert.Equal(t, result, again)
}

func TestComputeAggregates(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []*models.ExecutionRecord{
		finished(now.Add(-48*time.Hour), models.ExecutionSuccess, 100),
		finished(now.Add(-48*time.Hour+time.Minute), models.ExecutionFailed, 300),
		finished(now.Add(-time.Hour), models.ExecutionSuccess, 200),
		{ID: "exec-run", WorkflowID: "wf-1", Status: models.ExecutionRunning, StartedAt: now.Add(-time.Minute)},
	}

	result := stats.Compute(records, 7, now)

	assert.Equal(t, 4, result.TotalCount)
	assert.InDelta(t, 50.0, result.SuccessRate, 0.001)
	assert.InDelta(t, 200.0, result.AvgDurationMs, 0.001)
	assert.Equal(t, map[models.ExecutionStatus]int{
		models.ExecutionSuccess: 2,
		models.ExecutionFailed:  1,
		models.ExecutionRunning: 1,
	}, result.StatusBreakdown)

	require.Len(t, result.Trend, 7)

	dayMinusTwo := result.Trend[4]
	assert.Equal(t, "2026-03-08", dayMinusTwo.Date)
	assert.Equal(t, 2, dayMinusTwo.Total)
	assert.Equal(t, 1, dayMinusTwo.Success)
	assert.Equal(t, 1, dayMinusTwo.Failed)
	assert.InDelta(t, 50.0, dayMinusTwo.SuccessRate, 0.001)

	today := result.Trend[6]
	assert.Equal(t, 2, today.Total)
	assert.Equal(t, 1, today.Success)
	assert.Equal(t, 0, today.Failed)
}

func TestComputeIgnoresRecordsOutsideWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	records := []*models.ExecutionRecord{
		finished(now.AddDate(0, 0, -30), models.ExecutionSuccess, 100),
		finished(now.Add(-time.Hour), models.ExecutionSuccess, 100),
	}

	result := stats.Compute(records, 7, now)

	assert.Equal(t, 1, result.TotalCount)
	assert.InDelta(t, 100.0, result.SuccessRate, 0.001)
}

func TestComputeZeroWindowDays(t *testing.T) {
	t.Parallel()

	result := stats.Compute(nil, 0, time.Now())

	assert.Empty(t, result.Trend)
	assert.Zero(t, result.TotalCount)
}

func TestWindowStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)

	start := stats.WindowStart(now, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), start)

	start = stats.WindowStart(now, 30)
	assert.Equal(t, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), start)
}
