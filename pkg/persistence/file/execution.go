package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
)

// ExecutionRepository stores execution records under
// <root>/executions/<workflow_id>/<execution_id>.json.
type ExecutionRepository struct {
	root      string
	mu        *sync.Mutex
	workflows *WorkflowRepository
}

func (er *ExecutionRepository) dir(workflowID string) string {
	return filepath.Join(executionsDir(er.root), workflowID)
}

func (er *ExecutionRepository) path(workflowID, executionID string) string {
	return filepath.Join(er.dir(workflowID), executionID+".json")
}

func (er *ExecutionRepository) write(record *models.ExecutionRecord) error {
	if err := os.MkdirAll(er.dir(record.WorkflowID), 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode execution %s: %w", record.ID, err)
	}

	return os.WriteFile(er.path(record.WorkflowID, record.ID), data, 0o600)
}

func (er *ExecutionRepository) Create(_ context.Context, record *models.ExecutionRecord) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	return er.write(record)
}

func (er *ExecutionRepository) Update(_ context.Context, record *models.ExecutionRecord) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	return er.write(record)
}

// Finalize writes the terminal record and the owning workflow's counter
// updates under the same lock, so readers never observe one without the
// other.
func (er *ExecutionRepository) Finalize(_ context.Context, record *models.ExecutionRecord) error {
	if !record.IsTerminal() {
		return fmt.Errorf("cannot finalize execution %s in status %s", record.ID, record.Status)
	}

	er.mu.Lock()
	defer er.mu.Unlock()

	if err := er.write(record); err != nil {
		return err
	}

	workflow, err := er.workflows.load(record.WorkflowID)
	if err != nil {
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			// The workflow was hard-deleted mid-run; the record still
			// stands as history.
			return nil
		}

		return err
	}

	workflow.TotalExecutions++

	if record.Status == models.ExecutionSuccess {
		workflow.TotalSuccess++
	} else {
		workflow.TotalFailure++
	}

	workflow.LastExecutionAt = record.FinishedAt

	return er.workflows.write(workflow)
}

func (er *ExecutionRepository) GetByID(_ context.Context, id string) (*models.ExecutionRecord, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(executionsDir(er.root), "*", id+".json"))
	if err != nil || len(matches) == 0 {
		return nil, persistence.ErrExecutionNotFound
	}

	return readRecord(matches[0])
}

func (er *ExecutionRepository) loadByWorkflow(workflowID string) ([]*models.ExecutionRecord, error) {
	dir := er.dir(workflowID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	root := os.DirFS(dir)

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution files: %w", err)
	}

	records := make([]*models.ExecutionRecord, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		record, err := readRecord(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, nil
}

// ListByWorkflow returns the workflow's execution history, newest
// first.
func (er *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID string, opts persistence.ListExecutionsOptions) (*persistence.ExecutionListResult, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	records, err := er.loadByWorkflow(workflowID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	totalCount := int64(len(records))

	startIdx := opts.Offset
	if startIdx > len(records) {
		startIdx = len(records)
	}

	endIdx := startIdx + opts.Limit
	if endIdx > len(records) {
		endIdx = len(records)
	}

	return &persistence.ExecutionListResult{
		Executions:  records[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(records),
	}, nil
}

func (er *ExecutionRepository) ListSince(_ context.Context, workflowID string, since time.Time) ([]*models.ExecutionRecord, error) {
	er.mu.Lock()
	defer er.mu.Unlock()

	records, err := er.loadByWorkflow(workflowID)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.ExecutionRecord, 0, len(records))

	for _, record := range records {
		if !record.StartedAt.Before(since) {
			filtered = append(filtered, record)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].StartedAt.Before(filtered[j].StartedAt)
	})

	return filtered, nil
}

func (er *ExecutionRepository) PurgeByWorkflow(_ context.Context, workflowID string) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	err := os.RemoveAll(er.dir(workflowID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func readRecord(path string) (*models.ExecutionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution file %s: %w", path, err)
	}

	var record models.ExecutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode execution file %s: %w", path, err)
	}

	return &record, nil
}
