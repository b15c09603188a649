package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/autoflowhq/autoflow/pkg/models"
)

func TestSortedActionsFollowOrderField(t *testing.T) {
	t.Parallel()

	wf := &models.Workflow{
		Actions: []*models.Action{
			{Type: models.ActionLog, Order: 3},
			{Type: models.ActionSendEmail, Order: 1},
			{Type: models.ActionWait, Order: 2},
		},
	}

	sorted := wf.SortedActions()

	assert.Equal(t, []int{1, 2, 3}, []int{sorted[0].Order, sorted[1].Order, sorted[2].Order})
	assert.Equal(t, models.ActionSendEmail, sorted[0].Type)

	// The original slice is left untouched.
	assert.Equal(t, 3, wf.Actions[0].Order)
}

func TestPolicyDurations(t *testing.T) {
	t.Parallel()

	wf := &models.Workflow{Timeout: 30, RetryDelay: 2}

	assert.Equal(t, 30*time.Second, wf.TimeoutDuration())
	assert.Equal(t, 2*time.Second, wf.RetryDelayDuration())

	unset := &models.Workflow{}
	assert.Zero(t, unset.TimeoutDuration())
	assert.Zero(t, unset.RetryDelayDuration())
}

func TestIsDeleted(t *testing.T) {
	t.Parallel()

	wf := &models.Workflow{}
	assert.False(t, wf.IsDeleted())

	now := time.Now()
	wf.DeletedAt = &now
	assert.True(t, wf.IsDeleted())
}

func TestTriggerConfigDecoding(t *testing.T) {
	t.Parallel()

	trigger := &models.Trigger{
		Type: models.TriggerFieldChanged,
		Config: map[string]any{
			"kind":  "order",
			"field": "status",
			"from":  "pending",
			"to":    "shipped",
		},
	}

	config := trigger.FieldChangedConfig()
	assert.Equal(t, "order", config.Kind)
	assert.Equal(t, "status", config.Field)
	assert.Equal(t, "pending", config.From)
	assert.Equal(t, "shipped", config.To)

	// Non-string values decode to the zero filter rather than panicking.
	loose := &models.Trigger{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": 42}}
	assert.Empty(t, loose.EntityConfig().Kind)

	bare := &models.Trigger{Type: models.TriggerScheduleTick}
	assert.Empty(t, bare.ScheduleConfig().Schedule)
}
