package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/registry"
)

// ErrWorkflowNotFound is re-exported so callers need not import
// persistence to test for it.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	validate    *validator.Validate
}

func NewWorkflow(store persistence.Persistence, reg *registry.Registry) *Workflow {
	return &Workflow{
		persistence: store,
		registry:    reg,
		validate:    validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListWorkflowsRequest contains options for listing workflows.
type ListWorkflowsRequest struct {
	Limit  int
	Offset int

	Category string
	Enabled  *bool

	SortBy    string
	SortOrder string
}

type ListWorkflowsResponse struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

var allowedSortFields = []string{"created_at", "updated_at", "name", "priority"}

func (w *Workflow) ListWorkflows(ctx context.Context, req ListWorkflowsRequest) (*ListWorkflowsResponse, error) {
	if err := w.validateListRequest(&req); err != nil {
		return nil, err
	}

	result, err := w.persistence.Workflows().List(ctx, persistence.ListWorkflowsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		Category:  req.Category,
		Enabled:   req.Enabled,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if errors.Is(err, persistence.ErrInvalidSortField) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return &ListWorkflowsResponse{
		Workflows:   result.Workflows,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

func (w *Workflow) validateListRequest(req *ListWorkflowsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	if !slices.Contains(allowedSortFields, req.SortBy) {
		return newValidationError(
			"ListWorkflows",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field %q, allowed: %s", req.SortBy, strings.Join(allowedSortFields, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return newValidationError(
			"ListWorkflows",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order %q, allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	return nil
}

// FetchByID retrieves a workflow by its ID, including soft-deleted ones
// so their history stays inspectable.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.Workflows().GetByID(ctx, id)
}

// Create validates and stores a new workflow definition. The definition
// is checked structurally (tags) and semantically (known trigger/action
// types, config schemas, condition tree shape) before it is accepted.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	if workflow.Priority == 0 {
		workflow.Priority = models.MinPriority
	}

	if err := w.validateDefinition(workflow); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.ID = generateWorkflowID()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now
	workflow.TotalExecutions = 0
	workflow.TotalSuccess = 0
	workflow.TotalFailure = 0
	workflow.LastExecutionAt = nil
	workflow.DeletedAt = nil

	if err := w.persistence.Workflows().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces the definition of an existing workflow. Identity,
// created-at and lifecycle counters are preserved; history already
// written against the old definition is untouched.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing.IsDeleted() {
		return nil, ErrWorkflowDeleted
	}

	if workflow.Priority == 0 {
		workflow.Priority = existing.Priority
	}

	if err := w.validateDefinition(workflow); err != nil {
		return nil, err
	}

	workflow.ID = workflowID
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()
	workflow.TotalExecutions = existing.TotalExecutions
	workflow.TotalSuccess = existing.TotalSuccess
	workflow.TotalFailure = existing.TotalFailure
	workflow.LastExecutionAt = existing.LastExecutionAt

	if err := w.persistence.Workflows().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// SetEnabled toggles dispatch eligibility without touching the rest of
// the definition.
func (w *Workflow) SetEnabled(ctx context.Context, workflowID string, enabled bool) (*models.Workflow, error) {
	existing, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing.IsDeleted() {
		return nil, ErrWorkflowDeleted
	}

	existing.Enabled = enabled
	existing.UpdatedAt = time.Now().UTC()

	if err := w.persistence.Workflows().Save(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return existing, nil
}

// SoftDelete disables the workflow and marks it deleted; execution
// history remains readable.
func (w *Workflow) SoftDelete(ctx context.Context, workflowID string) error {
	if _, err := w.persistence.Workflows().GetByID(ctx, workflowID); err != nil {
		return err
	}

	return w.persistence.Workflows().SoftDelete(ctx, workflowID, time.Now().UTC())
}

// Delete removes the definition permanently. When purgeHistory is set
// the workflow's execution records go with it.
func (w *Workflow) Delete(ctx context.Context, workflowID string, purgeHistory bool) error {
	if _, err := w.persistence.Workflows().GetByID(ctx, workflowID); err != nil {
		return err
	}

	if err := w.persistence.Workflows().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	if purgeHistory {
		if err := w.persistence.Executions().PurgeByWorkflow(ctx, workflowID); err != nil {
			return fmt.Errorf("failed to purge execution history: %w", err)
		}
	}

	return nil
}

// ManualEvent builds the business event for a manual fire request. The
// workflow must exist, be enabled and declare a MANUAL trigger.
func (w *Workflow) ManualEvent(ctx context.Context, workflowID string, payload map[string]any) (*models.BusinessEvent, error) {
	workflow, err := w.persistence.Workflows().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.IsDeleted() || !workflow.Enabled {
		return nil, ErrWorkflowNotEnabled
	}

	manual := false

	for _, trigger := range workflow.Triggers {
		if trigger.Type == models.TriggerManual {
			manual = true

			break
		}
	}

	if !manual {
		return nil, newValidationError(
			"ManualEvent",
			"NO_MANUAL_TRIGGER",
			fmt.Sprintf("workflow %s has no MANUAL trigger", workflowID),
			ErrInvalidRequest,
		)
	}

	if payload == nil {
		payload = map[string]any{}
	}

	payload["workflow_id"] = workflowID

	return &models.BusinessEvent{
		ID:         "evt-" + uuid.New().String()[:8],
		Type:       models.TriggerManual,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}, nil
}

func (w *Workflow) validateDefinition(workflow *models.Workflow) error {
	if err := w.validate.Struct(workflow); err != nil {
		return newValidationError(
			"validateDefinition",
			"INVALID_DEFINITION",
			err.Error(),
			ErrInvalidDefinition,
		)
	}

	if err := w.registry.ValidateWorkflow(workflow); err != nil {
		return newValidationError(
			"validateDefinition",
			"INVALID_DEFINITION",
			err.Error(),
			ErrInvalidDefinition,
		)
	}

	return nil
}

func generateWorkflowID() string {
	return "wf-" + uuid.New().String()[:8]
}
