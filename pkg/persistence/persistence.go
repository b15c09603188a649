// Package persistence provides the data storage abstraction for
// workflow definitions and execution records.
package persistence

import (
	"context"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
)

type Persistence interface {
	Workflows() WorkflowRepository
	Executions() ExecutionRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListWorkflowsOptions controls pagination, filtering and sorting of
// the workflow list.
type ListWorkflowsOptions struct {
	Limit    int
	Offset   int
	Category string
	Enabled  *bool
	SortBy   string // created_at, updated_at, name, priority
	SortOrder string // asc, desc
}

type WorkflowListResult struct {
	Workflows   []*models.Workflow
	TotalCount  int64
	HasNextPage bool
}

type WorkflowRepository interface {
	List(ctx context.Context, opts ListWorkflowsOptions) (*WorkflowListResult, error)
	// ListEnabled returns every enabled, not soft-deleted workflow; the
	// dispatcher's read path.
	ListEnabled(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// SoftDelete marks the workflow deleted, keeping the definition and
	// its execution history readable.
	SoftDelete(ctx context.Context, id string, at time.Time) error
	// Delete removes the definition. Execution history is retained
	// unless explicitly purged through the execution repository.
	Delete(ctx context.Context, id string) error
}

// ListExecutionsOptions controls pagination of execution history.
// Results are always newest first.
type ListExecutionsOptions struct {
	Limit  int
	Offset int
}

type ExecutionListResult struct {
	Executions  []*models.ExecutionRecord
	TotalCount  int64
	HasNextPage bool
}

type ExecutionRepository interface {
	Create(ctx context.Context, record *models.ExecutionRecord) error
	Update(ctx context.Context, record *models.ExecutionRecord) error
	// Finalize persists the terminal record and applies the owning
	// workflow's counter updates (total, success/failure, last
	// execution time) in a single transactional write. Counters are
	// incremented storage-side, never read-modify-written, so they stay
	// correct under concurrent runs.
	Finalize(ctx context.Context, record *models.ExecutionRecord) error
	GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error)
	ListByWorkflow(ctx context.Context, workflowID string, opts ListExecutionsOptions) (*ExecutionListResult, error)
	// ListSince returns records with StartedAt at or after the cutoff,
	// oldest first; the statistics read path.
	ListSince(ctx context.Context, workflowID string, since time.Time) ([]*models.ExecutionRecord, error)
	PurgeByWorkflow(ctx context.Context, workflowID string) error
}
