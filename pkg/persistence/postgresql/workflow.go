package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
)

// WorkflowRepository handles workflow definition rows. Triggers,
// conditions and actions are embedded value data and stored as JSONB
// on the workflow row.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const workflowColumns = `id, name, description, tags, category, enabled,
	triggers, conditions, actions,
	priority, max_retries, retry_delay, timeout,
	total_executions, total_success, total_failure, last_execution_at,
	created_at, updated_at, deleted_at`

var workflowSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"priority":   "priority",
}

func (wr *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder != "asc" {
		opts.SortOrder = "desc"
	}

	sortColumn, ok := workflowSortColumns[opts.SortBy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	where := "WHERE deleted_at IS NULL"
	args := []any{}

	if opts.Category != "" {
		args = append(args, opts.Category)
		where += fmt.Sprintf(" AND category = $%d", len(args))
	}

	if opts.Enabled != nil {
		args = append(args, *opts.Enabled)
		where += fmt.Sprintf(" AND enabled = $%d", len(args))
	}

	var totalCount int64
	if err := wr.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM workflows "+where, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count workflows: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf("SELECT %s FROM workflows %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		workflowColumns, where, sortColumn, opts.SortOrder, len(args)-1, len(args))

	rows, err := wr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	workflows := make([]*models.Workflow, 0, opts.Limit)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &persistence.WorkflowListResult{
		Workflows:   workflows,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(workflows)) < totalCount,
	}, nil
}

func (wr *WorkflowRepository) ListEnabled(ctx context.Context) ([]*models.Workflow, error) {
	query := fmt.Sprintf("SELECT %s FROM workflows WHERE enabled = true AND deleted_at IS NULL", workflowColumns)

	rows, err := wr.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled workflows: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var workflows []*models.Workflow

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, rows.Err()
}

func (wr *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := fmt.Sprintf("SELECT %s FROM workflows WHERE id = $1", workflowColumns)

	workflow, err := scanWorkflow(wr.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrWorkflowNotFound
	}

	return workflow, err
}

func (wr *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	tags, err := json.Marshal(workflow.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	triggers, err := json.Marshal(workflow.Triggers)
	if err != nil {
		return fmt.Errorf("failed to encode triggers: %w", err)
	}

	var conditions []byte
	if workflow.Conditions != nil {
		conditions, err = json.Marshal(workflow.Conditions)
		if err != nil {
			return fmt.Errorf("failed to encode conditions: %w", err)
		}
	}

	actions, err := json.Marshal(workflow.Actions)
	if err != nil {
		return fmt.Errorf("failed to encode actions: %w", err)
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			category = EXCLUDED.category,
			enabled = EXCLUDED.enabled,
			triggers = EXCLUDED.triggers,
			conditions = EXCLUDED.conditions,
			actions = EXCLUDED.actions,
			priority = EXCLUDED.priority,
			max_retries = EXCLUDED.max_retries,
			retry_delay = EXCLUDED.retry_delay,
			timeout = EXCLUDED.timeout,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = wr.db.ExecContext(ctx, query,
		workflow.ID, workflow.Name, workflow.Description, tags, workflow.Category, workflow.Enabled,
		triggers, nullableBytes(conditions), actions,
		workflow.Priority, workflow.MaxRetries, workflow.RetryDelay, workflow.Timeout,
		workflow.TotalExecutions, workflow.TotalSuccess, workflow.TotalFailure, workflow.LastExecutionAt,
		workflow.CreatedAt, workflow.UpdatedAt, workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (wr *WorkflowRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := wr.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = $2, enabled = false, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL",
		id, at)
	if err != nil {
		return fmt.Errorf("failed to soft delete workflow %s: %w", id, err)
	}

	return requireRow(result)
}

func (wr *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := wr.db.ExecContext(ctx, "DELETE FROM workflows WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrWorkflowNotFound
	}

	return nil
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}

	return b
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow   models.Workflow
		tags       []byte
		category   sql.NullString
		triggers   []byte
		conditions []byte
		actions    []byte
		lastExec   sql.NullTime
		deletedAt  sql.NullTime
	)

	err := row.Scan(
		&workflow.ID, &workflow.Name, &workflow.Description, &tags, &category, &workflow.Enabled,
		&triggers, &conditions, &actions,
		&workflow.Priority, &workflow.MaxRetries, &workflow.RetryDelay, &workflow.Timeout,
		&workflow.TotalExecutions, &workflow.TotalSuccess, &workflow.TotalFailure, &lastExec,
		&workflow.CreatedAt, &workflow.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Category = category.String

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &workflow.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
	}

	if err := json.Unmarshal(triggers, &workflow.Triggers); err != nil {
		return nil, fmt.Errorf("failed to decode triggers: %w", err)
	}

	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &workflow.Conditions); err != nil {
			return nil, fmt.Errorf("failed to decode conditions: %w", err)
		}
	}

	if err := json.Unmarshal(actions, &workflow.Actions); err != nil {
		return nil, fmt.Errorf("failed to decode actions: %w", err)
	}

	if lastExec.Valid {
		workflow.LastExecutionAt = &lastExec.Time
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}
