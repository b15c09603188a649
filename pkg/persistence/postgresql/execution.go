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

// ExecutionRepository handles execution record rows.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const executionColumns = `id, workflow_id, status, started_at, finished_at, duration_ms,
	trigger_context, action_results, error, error_kind, note`

func (er *ExecutionRepository) Create(ctx context.Context, record *models.ExecutionRecord) error {
	triggerContext, actionResults, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = er.db.ExecContext(ctx, `
		INSERT INTO executions (`+executionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID, record.WorkflowID, record.Status, nullableTime(record.StartedAt), record.FinishedAt,
		record.DurationMs, triggerContext, actionResults,
		nullableString(record.Error), nullableString(string(record.ErrorKind)), nullableString(record.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to create execution %s: %w", record.ID, err)
	}

	return nil
}

func (er *ExecutionRepository) Update(ctx context.Context, record *models.ExecutionRecord) error {
	return er.update(ctx, er.db, record)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (er *ExecutionRepository) update(ctx context.Context, db execer, record *models.ExecutionRecord) error {
	triggerContext, actionResults, err := encodeRecord(record)
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE executions SET
			status = $2, started_at = $3, finished_at = $4, duration_ms = $5,
			trigger_context = $6, action_results = $7, error = $8, error_kind = $9, note = $10
		WHERE id = $1`,
		record.ID, record.Status, nullableTime(record.StartedAt), record.FinishedAt, record.DurationMs,
		triggerContext, actionResults,
		nullableString(record.Error), nullableString(string(record.ErrorKind)), nullableString(record.Note),
	)
	if err != nil {
		return fmt.Errorf("failed to update execution %s: %w", record.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return persistence.ErrExecutionNotFound
	}

	return nil
}

// Finalize writes the terminal record and applies the workflow counter
// increments in a single transaction. The increments are expressed in
// SQL, not read-modify-write, so concurrent runs of the same workflow
// cannot lose updates.
func (er *ExecutionRepository) Finalize(ctx context.Context, record *models.ExecutionRecord) error {
	if !record.IsTerminal() {
		return fmt.Errorf("cannot finalize execution %s in status %s", record.ID, record.Status)
	}

	tx, err := er.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin finalize transaction: %w", err)
	}

	if err := er.update(ctx, tx, record); err != nil {
		_ = tx.Rollback()

		return err
	}

	successDelta := 0
	if record.Status == models.ExecutionSuccess {
		successDelta = 1
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE workflows SET
			total_executions = total_executions + 1,
			total_success = total_success + $2,
			total_failure = total_failure + (1 - $2),
			last_execution_at = $3
		WHERE id = $1`,
		record.WorkflowID, successDelta, record.FinishedAt,
	)
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to update workflow counters for %s: %w", record.WorkflowID, err)
	}

	return tx.Commit()
}

func (er *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM executions WHERE id = $1", executionColumns)

	record, err := scanExecution(er.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrExecutionNotFound
	}

	return record, err
}

func (er *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, opts persistence.ListExecutionsOptions) (*persistence.ExecutionListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	var totalCount int64
	if err := er.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM executions WHERE workflow_id = $1", workflowID).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to count executions: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM executions WHERE workflow_id = $1 ORDER BY started_at DESC NULLS LAST LIMIT $2 OFFSET $3",
		executionColumns)

	rows, err := er.db.QueryContext(ctx, query, workflowID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]*models.ExecutionRecord, 0, opts.Limit)

	for rows.Next() {
		record, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &persistence.ExecutionListResult{
		Executions:  records,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(records)) < totalCount,
	}, nil
}

func (er *ExecutionRepository) ListSince(ctx context.Context, workflowID string, since time.Time) ([]*models.ExecutionRecord, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM executions WHERE workflow_id = $1 AND started_at >= $2 ORDER BY started_at ASC",
		executionColumns)

	rows, err := er.db.QueryContext(ctx, query, workflowID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions since %s: %w", since, err)
	}
	defer func() { _ = rows.Close() }()

	var records []*models.ExecutionRecord

	for rows.Next() {
		record, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (er *ExecutionRepository) PurgeByWorkflow(ctx context.Context, workflowID string) error {
	_, err := er.db.ExecContext(ctx, "DELETE FROM executions WHERE workflow_id = $1", workflowID)
	if err != nil {
		return fmt.Errorf("failed to purge executions for workflow %s: %w", workflowID, err)
	}

	return nil
}

func encodeRecord(record *models.ExecutionRecord) (triggerContext, actionResults []byte, err error) {
	if record.TriggerContext != nil {
		triggerContext, err = json.Marshal(record.TriggerContext)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to encode trigger context: %w", err)
		}
	}

	actionResults, err = json.Marshal(record.ActionResults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode action results: %w", err)
	}

	return triggerContext, actionResults, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}

	return t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}

func scanExecution(row rowScanner) (*models.ExecutionRecord, error) {
	var (
		record         models.ExecutionRecord
		startedAt      sql.NullTime
		finishedAt     sql.NullTime
		triggerContext []byte
		actionResults  []byte
		errText        sql.NullString
		errKind        sql.NullString
		note           sql.NullString
	)

	err := row.Scan(
		&record.ID, &record.WorkflowID, &record.Status, &startedAt, &finishedAt, &record.DurationMs,
		&triggerContext, &actionResults, &errText, &errKind, &note,
	)
	if err != nil {
		return nil, err
	}

	if startedAt.Valid {
		record.StartedAt = startedAt.Time
	}

	if finishedAt.Valid {
		record.FinishedAt = &finishedAt.Time
	}

	if len(triggerContext) > 0 {
		if err := json.Unmarshal(triggerContext, &record.TriggerContext); err != nil {
			return nil, fmt.Errorf("failed to decode trigger context: %w", err)
		}
	}

	if err := json.Unmarshal(actionResults, &record.ActionResults); err != nil {
		return nil, fmt.Errorf("failed to decode action results: %w", err)
	}

	record.Error = errText.String
	record.ErrorKind = models.ErrorKind(errKind.String)
	record.Note = note.String

	return &record, nil
}
