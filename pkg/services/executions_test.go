package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/models"
)

func seedExecutions(t *testing.T, service *Workflow, count int) string {
	t.Helper()

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	now := time.Now().UTC()

	for i := range count {
		start := now.Add(-time.Duration(count-i) * time.Minute)
		end := start.Add(50 * time.Millisecond)

		status := models.ExecutionSuccess
		if i%3 == 0 {
			status = models.ExecutionFailed
		}

		record := &models.ExecutionRecord{
			ID:            fmt.Sprintf("exec-%04d", i),
			WorkflowID:    created.ID,
			Status:        status,
			StartedAt:     start,
			FinishedAt:    &end,
			DurationMs:    50,
			ActionResults: []models.ActionResult{},
		}

		require.NoError(t, service.persistence.Executions().Create(t.Context(), record))
		require.NoError(t, service.persistence.Executions().Finalize(t.Context(), record))
	}

	return created.ID
}

func TestExecutionsListNewestFirst(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	executions := NewExecutions(service.persistence)

	workflowID := seedExecutions(t, service, 5)

	result, err := executions.List(t.Context(), ListExecutionsRequest{WorkflowID: workflowID})
	require.NoError(t, err)

	require.Len(t, result.Executions, 5)
	assert.Equal(t, int64(5), result.TotalCount)
	assert.False(t, result.HasNextPage)

	for i := 1; i < len(result.Executions); i++ {
		assert.True(t, !result.Executions[i].StartedAt.After(result.Executions[i-1].StartedAt),
			"executions must be ordered newest first")
	}
}

func TestExecutionsListPagination(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	executions := NewExecutions(service.persistence)

	workflowID := seedExecutions(t, service, 7)

	page, err := executions.List(t.Context(), ListExecutionsRequest{
		WorkflowID: workflowID,
		Limit:      3,
	})
	require.NoError(t, err)
	assert.Len(t, page.Executions, 3)
	assert.True(t, page.HasNextPage)

	last, err := executions.List(t.Context(), ListExecutionsRequest{
		WorkflowID: workflowID,
		Limit:      3,
		Offset:     6,
	})
	require.NoError(t, err)
	assert.Len(t, last.Executions, 1)
	assert.False(t, last.HasNextPage)
}

func TestExecutionsListUnknownWorkflow(t *testing.T) {
	t.Parallel()

	executions := NewExecutions(newTestService(t).persistence)

	_, err := executions.List(t.Context(), ListExecutionsRequest{WorkflowID: "wf-missing"})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestExecutionsStats(t *testing.T) {
	t.Parallel()

	service := newTestService(t)
	executions := NewExecutions(service.persistence)

	workflowID := seedExecutions(t, service, 6)

	result, err := executions.Stats(t.Context(), workflowID, 7)
	require.NoError(t, err)

	assert.Equal(t, 6, result.TotalCount)
	assert.Len(t, result.Trend, 7)
	assert.Equal(t, 4, result.StatusBreakdown[models.ExecutionSuccess])
	assert.Equal(t, 2, result.StatusBreakdown[models.ExecutionFailed])
}

func TestExecutionsStatsRejectsNonPositiveWindow(t *testing.T) {
	t.Parallel()

	executions := NewExecutions(newTestService(t).persistence)

	for _, days := range []int{0, -1} {
		_, err := executions.Stats(t.Context(), "wf-any", days)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	}
}

func TestExecutionsCountersMatchHistory(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	workflowID := seedExecutions(t, service, 6)

	wf, err := service.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)

	assert.Equal(t, int64(6), wf.TotalExecutions)
	assert.Equal(t, wf.TotalExecutions, wf.TotalSuccess+wf.TotalFailure)
	require.NotNil(t, wf.LastExecutionAt)
}
