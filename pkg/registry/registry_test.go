package registry_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/mocks"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/registry"
)

func newTestRegistry() *registry.Registry {
	return registry.NewDefaultRegistry(slog.New(slog.DiscardHandler), mocks.NewConnectorMock().Set())
}

func baseWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:      "wf-reg-1",
		Name:    "registry test",
		Enabled: true,
		Triggers: []*models.Trigger{
			{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": "order"}},
		},
		Actions: []*models.Action{
			{Type: models.ActionLog, Config: map[string]any{"message": "fired"}, Order: 1},
		},
		Priority: 1,
	}
}

func TestValidateWorkflowAccepts(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	assert.NoError(t, reg.ValidateWorkflow(baseWorkflow()))
}

func TestValidateWorkflowRejections(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	tests := []struct {
		name    string
		mutate  func(*models.Workflow)
		wantErr string
	}{
		{
			"unknown trigger type",
			func(wf *models.Workflow) {
				wf.Triggers[0].Type = "COMET_SIGHTED"
			},
			"unknown trigger type",
		},
		{
			"trigger config with unexpected key",
			func(wf *models.Workflow) {
				wf.Triggers[0].Config = map[string]any{"knd": "order"}
			},
			"invalid config",
		},
		{
			"field changed trigger without field",
			func(wf *models.Workflow) {
				wf.Triggers[0] = &models.Trigger{Type: models.TriggerFieldChanged, Config: map[string]any{"from": "a"}}
			},
			"invalid config",
		},
		{
			"unknown action type",
			func(wf *models.Workflow) {
				wf.Actions[0].Type = "TELEPORT"
			},
			"unknown action type",
		},
		{
			"email without recipient",
			func(wf *models.Workflow) {
				wf.Actions[0] = &models.Action{Type: models.ActionSendEmail, Config: map[string]any{"subject": "s"}, Order: 1}
			},
			"invalid config",
		},
		{
			"duplicate action order",
			func(wf *models.Workflow) {
				wf.Actions = append(wf.Actions, &models.Action{
					Type:   models.ActionLog,
					Config: map[string]any{"message": "again"},
					Order:  1,
				})
			},
			"duplicate order",
		},
		{
			"empty condition group",
			func(wf *models.Workflow) {
				wf.Conditions = &models.Condition{Operator: string(models.GroupAnd)}
			},
			"no children",
		},
		{
			"condition leaf with unknown comparator",
			func(wf *models.Workflow) {
				wf.Conditions = &models.Condition{Field: "{{entity.kind}}", Operator: "resembles", Value: "order"}
			},
			"unknown condition operator",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wf := baseWorkflow()
			tt.mutate(wf)

			err := reg.ValidateWorkflow(wf)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateWorkflowNilConfigs(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	wf := baseWorkflow()
	wf.Triggers[0].Config = nil
	wf.Conditions = nil

	assert.NoError(t, reg.ValidateWorkflow(wf))
}

func TestCreateExecutorUnknownType(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	_, err := reg.CreateExecutor(&models.Action{Type: "TELEPORT", Order: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}

func TestActionTypesCoverBuiltins(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	types := reg.ActionTypes()
	assert.Len(t, types, 7)
	assert.Contains(t, types, models.ActionSendEmail)
	assert.Contains(t, types, models.ActionWait)
	assert.Contains(t, types, models.ActionLog)
}
