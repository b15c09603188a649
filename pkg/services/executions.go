package services

import (
	"context"
	"fmt"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/stats"
)

var ErrExecutionNotFound = persistence.ErrExecutionNotFound

type Executions struct {
	persistence persistence.Persistence
	now         func() time.Time
}

func NewExecutions(store persistence.Persistence) *Executions {
	return &Executions{
		persistence: store,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type ListExecutionsRequest struct {
	WorkflowID string
	Limit      int
	Offset     int
}

type ListExecutionsResponse struct {
	Executions  []*models.ExecutionRecord `json:"executions"`
	TotalCount  int64                     `json:"total_count"`
	HasNextPage bool                      `json:"has_next_page"`
}

// List returns a workflow's execution history, newest first. The
// workflow must exist, but may be disabled or soft-deleted.
func (e *Executions) List(ctx context.Context, req ListExecutionsRequest) (*ListExecutionsResponse, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if _, err := e.persistence.Workflows().GetByID(ctx, req.WorkflowID); err != nil {
		return nil, err
	}

	result, err := e.persistence.Executions().ListByWorkflow(ctx, req.WorkflowID, persistence.ListExecutionsOptions{
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return &ListExecutionsResponse{
		Executions:  result.Executions,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

// FetchByID returns one execution record.
func (e *Executions) FetchByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	return e.persistence.Executions().GetByID(ctx, id)
}

// Stats aggregates the workflow's history over the trailing windowDays
// calendar days. 7/30/90/365 are the presented options but any positive
// window is accepted.
func (e *Executions) Stats(ctx context.Context, workflowID string, windowDays int) (*stats.Stats, error) {
	if windowDays <= 0 {
		return nil, newValidationError(
			"Stats",
			"INVALID_WINDOW",
			fmt.Sprintf("invalid window %d, must be a positive number of days", windowDays),
			ErrInvalidWindow,
		)
	}

	if _, err := e.persistence.Workflows().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	now := e.now()

	records, err := e.persistence.Executions().ListSince(ctx, workflowID, stats.WindowStart(now, windowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load execution history: %w", err)
	}

	return stats.Compute(records, windowDays, now), nil
}
