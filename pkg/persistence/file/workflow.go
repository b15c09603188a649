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
	"strings"
	"sync"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
)

// WorkflowRepository handles workflow definition files under
// <root>/workflows/<id>.json.
type WorkflowRepository struct {
	root string
	mu   *sync.Mutex
}

func (wr *WorkflowRepository) path(id string) string {
	return filepath.Join(workflowsDir(wr.root), id+".json")
}

// loadAll reads every workflow file. Callers hold the lock.
func (wr *WorkflowRepository) loadAll() ([]*models.Workflow, error) {
	root := os.DirFS(workflowsDir(wr.root))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files: %w", err)
	}

	workflows := make([]*models.Workflow, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		workflow, err := wr.load(strings.TrimSuffix(file, ".json"))
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

func (wr *WorkflowRepository) load(id string) (*models.Workflow, error) {
	data, err := os.ReadFile(wr.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.ErrWorkflowNotFound
		}

		return nil, fmt.Errorf("failed to read workflow %s: %w", id, err)
	}

	var workflow models.Workflow
	if err := json.Unmarshal(data, &workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return &workflow, nil
}

func (wr *WorkflowRepository) write(workflow *models.Workflow) error {
	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", workflow.ID, err)
	}

	return os.WriteFile(wr.path(workflow.ID), data, 0o600)
}

// List returns paginated and filtered workflows with in-memory
// operations.
func (wr *WorkflowRepository) List(ctx context.Context, opts persistence.ListWorkflowsOptions) (*persistence.WorkflowListResult, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"priority":   true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	all, err := wr.loadAll()
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.IsDeleted() {
			continue
		}

		if opts.Category != "" && workflow.Category != opts.Category {
			continue
		}

		if opts.Enabled != nil && workflow.Enabled != *opts.Enabled {
			continue
		}

		filtered = append(filtered, workflow)
	}

	sortWorkflows(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))

	startIdx := opts.Offset
	if startIdx > len(filtered) {
		startIdx = len(filtered)
	}

	endIdx := startIdx + opts.Limit
	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &persistence.WorkflowListResult{
		Workflows:   filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

// ListEnabled returns every enabled, not soft-deleted workflow.
func (wr *WorkflowRepository) ListEnabled(_ context.Context) ([]*models.Workflow, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	all, err := wr.loadAll()
	if err != nil {
		return nil, err
	}

	enabled := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.Enabled && !workflow.IsDeleted() {
			enabled = append(enabled, workflow)
		}
	}

	return enabled, nil
}

func (wr *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.load(id)
}

func (wr *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	return wr.write(workflow)
}

func (wr *WorkflowRepository) SoftDelete(_ context.Context, id string, at time.Time) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	workflow, err := wr.load(id)
	if err != nil {
		return err
	}

	workflow.DeletedAt = &at
	workflow.Enabled = false
	workflow.UpdatedAt = at

	return wr.write(workflow)
}

func (wr *WorkflowRepository) Delete(_ context.Context, id string) error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	err := os.Remove(wr.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return persistence.ErrWorkflowNotFound
	}

	return err
}

func sortWorkflows(workflows []*models.Workflow, sortBy, sortOrder string) {
	sort.SliceStable(workflows, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "name":
			less = workflows[i].Name < workflows[j].Name
		case "priority":
			less = workflows[i].Priority < workflows[j].Priority
		case "updated_at":
			less = workflows[i].UpdatedAt.Before(workflows[j].UpdatedAt)
		default:
			less = workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}
