package services

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/mocks"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence/file"
	"github.com/autoflowhq/autoflow/pkg/registry"
)

func newTestService(t *testing.T) *Workflow {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	reg := registry.NewDefaultRegistry(logger, mocks.NewConnectorMock().Set())

	return NewWorkflow(store, reg)
}

func validWorkflow() *models.Workflow {
	return &models.Workflow{
		Name:        "Order welcome email",
		Description: "Email new customers when their first order lands",
		Enabled:     true,
		Triggers: []*models.Trigger{
			{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": "order"}},
		},
		Actions: []*models.Action{
			{
				Type:   models.ActionSendEmail,
				Config: map[string]any{"to": "{{entity.data.email}}", "subject": "Welcome", "body": "Hi"},
				Order:  1,
			},
		},
		Priority: 5,
	}
}

func TestWorkflowCreate(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(created.ID, "wf-"))
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
	assert.Zero(t, created.TotalExecutions)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
}

func TestWorkflowCreateRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*models.Workflow)
	}{
		{
			name:   "no triggers",
			mutate: func(wf *models.Workflow) { wf.Triggers = nil },
		},
		{
			name:   "no actions",
			mutate: func(wf *models.Workflow) { wf.Actions = nil },
		},
		{
			name:   "priority out of range",
			mutate: func(wf *models.Workflow) { wf.Priority = 11 },
		},
		{
			name:   "negative retries",
			mutate: func(wf *models.Workflow) { wf.MaxRetries = -1 },
		},
		{
			name: "unknown action type",
			mutate: func(wf *models.Workflow) {
				wf.Actions[0].Type = "TELEPORT"
			},
		},
		{
			name: "unknown trigger type",
			mutate: func(wf *models.Workflow) {
				wf.Triggers[0].Type = "COMET_SIGHTED"
			},
		},
		{
			name: "empty condition group",
			mutate: func(wf *models.Workflow) {
				wf.Conditions = &models.Condition{Operator: string(models.GroupAnd)}
			},
		},
		{
			name: "duplicate action order",
			mutate: func(wf *models.Workflow) {
				wf.Actions = append(wf.Actions, &models.Action{
					Type:   models.ActionLog,
					Config: map[string]any{"message": "dup"},
					Order:  1,
				})
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			wf := validWorkflow()
			tc.mutate(wf)

			_, err := service.Create(t.Context(), wf)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestWorkflowUpdatePreservesIdentityAndCounters(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	created.TotalExecutions = 4
	created.TotalSuccess = 3
	created.TotalFailure = 1
	require.NoError(t, service.persistence.Workflows().Save(t.Context(), created))

	replacement := validWorkflow()
	replacement.Name = "Order welcome email v2"

	updated, err := service.Update(t.Context(), created.ID, replacement)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Order welcome email v2", updated.Name)
	assert.Equal(t, int64(4), updated.TotalExecutions)
	assert.Equal(t, int64(3), updated.TotalSuccess)
}

func TestWorkflowUpdateNotFound(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.Update(t.Context(), "wf-missing", validWorkflow())
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowSetEnabled(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	disabled, err := service.SetEnabled(t.Context(), created.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	enabled, err := service.SetEnabled(t.Context(), created.ID, true)
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
}

func TestWorkflowSoftDelete(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.SoftDelete(t.Context(), created.ID))

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsDeleted())
	assert.False(t, fetched.Enabled)

	_, err = service.Update(t.Context(), created.ID, validWorkflow())
	assert.ErrorIs(t, err, ErrWorkflowDeleted)
}

func TestWorkflowHardDelete(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID, false))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestWorkflowManualEvent(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	wf := validWorkflow()
	wf.Triggers = append(wf.Triggers, &models.Trigger{Type: models.TriggerManual})

	created, err := service.Create(t.Context(), wf)
	require.NoError(t, err)

	event, err := service.ManualEvent(t.Context(), created.ID, map[string]any{"reason": "test"})
	require.NoError(t, err)

	assert.Equal(t, models.TriggerManual, event.Type)
	assert.Equal(t, created.ID, event.Payload["workflow_id"])
	assert.Equal(t, "test", event.Payload["reason"])
}

func TestWorkflowManualEventRequiresManualTrigger(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	created, err := service.Create(t.Context(), validWorkflow())
	require.NoError(t, err)

	_, err = service.ManualEvent(t.Context(), created.ID, nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWorkflowListSortValidation(t *testing.T) {
	t.Parallel()

	service := newTestService(t)

	_, err := service.ListWorkflows(t.Context(), ListWorkflowsRequest{SortBy: "nope"})
	assert.ErrorIs(t, err, ErrInvalidSortField)

	_, err = service.ListWorkflows(t.Context(), ListWorkflowsRequest{SortOrder: "sideways"})
	assert.ErrorIs(t, err, ErrInvalidSortOrder)
}
