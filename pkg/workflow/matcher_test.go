package workflow_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/workflow"
)

func entityEvent(eventType models.TriggerType, kind string) *models.BusinessEvent {
	return &models.BusinessEvent{
		ID:   "evt-m",
		Type: eventType,
		Payload: map[string]any{
			"entity": map[string]any{"kind": kind},
		},
	}
}

func TestMatchesByTriggerType(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	trigger := &models.Trigger{Type: models.TriggerEntityCreated}

	assert.True(t, matcher.Matches(trigger, entityEvent(models.TriggerEntityCreated, "order")))
	assert.False(t, matcher.Matches(trigger, entityEvent(models.TriggerEntityUpdated, "order")))
	assert.False(t, matcher.Matches(trigger, entityEvent(models.TriggerEntityDeleted, "order")))
}

func TestMatchesEntityKindFilter(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	tests := []struct {
		name   string
		config map[string]any
		kind   string
		want   bool
	}{
		{"matching kind", map[string]any{"kind": "order"}, "order", true},
		{"different kind", map[string]any{"kind": "order"}, "invoice", false},
		{"no filter matches anything", nil, "invoice", true},
		{"empty filter matches anything", map[string]any{"kind": ""}, "invoice", true},
		{"filter set but payload missing kind", map[string]any{"kind": "order"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trigger := &models.Trigger{Type: models.TriggerEntityCreated, Config: tt.config}
			event := entityEvent(models.TriggerEntityCreated, tt.kind)

			assert.Equal(t, tt.want, matcher.Matches(trigger, event))
		})
	}
}

func TestMatchesFieldChanged(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	event := &models.BusinessEvent{
		ID:   "evt-fc",
		Type: models.TriggerFieldChanged,
		Payload: map[string]any{
			"entity": map[string]any{"kind": "order"},
			"field":  "status",
			"from":   "pending",
			"to":     "shipped",
		},
	}

	tests := []struct {
		name   string
		config map[string]any
		want   bool
	}{
		{"all filters match", map[string]any{"kind": "order", "field": "status", "from": "pending", "to": "shipped"}, true},
		{"field only", map[string]any{"field": "status"}, true},
		{"transition only", map[string]any{"from": "pending", "to": "shipped"}, true},
		{"wrong to", map[string]any{"field": "status", "to": "cancelled"}, false},
		{"wrong from", map[string]any{"from": "paid"}, false},
		{"wrong kind", map[string]any{"kind": "invoice"}, false},
		{"no filters", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			trigger := &models.Trigger{Type: models.TriggerFieldChanged, Config: tt.config}

			assert.Equal(t, tt.want, matcher.Matches(trigger, event))
		})
	}
}

func TestMatchesSchedule(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	event := &models.BusinessEvent{
		ID:      "evt-s",
		Type:    models.TriggerScheduleTick,
		Payload: map[string]any{"schedule": "nightly"},
	}

	named := &models.Trigger{Type: models.TriggerScheduleTick, Config: map[string]any{"schedule": "nightly"}}
	other := &models.Trigger{Type: models.TriggerScheduleTick, Config: map[string]any{"schedule": "hourly"}}
	unfiltered := &models.Trigger{Type: models.TriggerScheduleTick}

	assert.True(t, matcher.Matches(named, event))
	assert.False(t, matcher.Matches(other, event))
	assert.True(t, matcher.Matches(unfiltered, event))
}

func TestMatchesManual(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	trigger := &models.Trigger{Type: models.TriggerManual}
	event := &models.BusinessEvent{ID: "evt-man", Type: models.TriggerManual}

	assert.True(t, matcher.Matches(trigger, event))
}

func TestWorkflowMatchesAnyTrigger(t *testing.T) {
	t.Parallel()

	matcher := workflow.NewTriggerMatcher(slog.New(slog.DiscardHandler))

	wf := &models.Workflow{
		ID: "wf-or",
		Triggers: []*models.Trigger{
			{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": "invoice"}},
			{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": "order"}},
		},
	}

	assert.True(t, matcher.WorkflowMatches(wf, entityEvent(models.TriggerEntityCreated, "order")))
	assert.True(t, matcher.WorkflowMatches(wf, entityEvent(models.TriggerEntityCreated, "invoice")))
	assert.False(t, matcher.WorkflowMatches(wf, entityEvent(models.TriggerEntityCreated, "customer")))
	assert.False(t, matcher.WorkflowMatches(wf, entityEvent(models.TriggerEntityDeleted, "order")))
}
