package dispatcher_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/channels/gochannel"
	"github.com/autoflowhq/autoflow/pkg/dispatcher"
	"github.com/autoflowhq/autoflow/pkg/eventbus"
	"github.com/autoflowhq/autoflow/pkg/events"
	"github.com/autoflowhq/autoflow/pkg/mocks"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence/file"
	"github.com/autoflowhq/autoflow/pkg/registry"
	"github.com/autoflowhq/autoflow/pkg/workflow"
)

// Exercises the full path from a published business event through the
// bus, the dispatcher and the runner down to the persisted record and
// the finished notification.
func TestEventToExecutionPipeline(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	store, err := file.NewPersistence(t.TempDir())
	require.NoError(t, err)

	mock := mocks.NewConnectorMock()
	reg := registry.NewDefaultRegistry(logger, mock.Set())

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	runner := workflow.NewRunner(logger, reg, store)
	matcher := workflow.NewTriggerMatcher(logger)
	disp := dispatcher.NewDispatcher(logger, store, matcher, runner, 2, dispatcher.WithPublisher(bus))
	defer disp.Stop()

	now := time.Now().UTC()
	wf := &models.Workflow{
		ID:      "wf-pipe",
		Name:    "welcome email",
		Enabled: true,
		Triggers: []*models.Trigger{
			{Type: models.TriggerEntityCreated, Config: map[string]any{"kind": "customer"}},
		},
		Actions: []*models.Action{
			{
				Type:   models.ActionSendEmail,
				Config: map[string]any{"to": "{{entity.data.email}}", "subject": "Welcome", "body": "Hello"},
				Order:  1,
			},
		},
		Priority:  5,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.Workflows().Save(t.Context(), wf))

	finished := make(chan *events.ExecutionFinished, 1)

	require.NoError(t, bus.Handle(events.BusinessEventReceived, func(ctx context.Context, event any) error {
		envelope, ok := event.(*events.BusinessEventEnvelope)
		require.True(t, ok)

		return disp.Dispatch(ctx, &envelope.Event)
	}))
	require.NoError(t, bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		if notification, ok := event.(*events.ExecutionFinished); ok {
			select {
			case finished <- notification:
			default:
			}
		}

		return nil
	}))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	envelope := events.BusinessEventEnvelope{
		BaseEvent: events.BaseEvent{
			ID:        "evt-pipe",
			Type:      events.BusinessEventReceived,
			Timestamp: now,
		},
		Event: models.BusinessEvent{
			ID:   "evt-pipe",
			Type: models.TriggerEntityCreated,
			Payload: map[string]any{
				"entity": map[string]any{
					"kind": "customer",
					"data": map[string]any{"email": "new@customer.io"},
				},
			},
			OccurredAt: now,
		},
	}
	require.NoError(t, bus.Publish(ctx, "evt-pipe", envelope))

	var notification *events.ExecutionFinished

	select {
	case notification = <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the execution to finish")
	}

	assert.Equal(t, "wf-pipe", notification.WorkflowID)
	assert.Equal(t, models.ExecutionSuccess, notification.Status)

	record, err := store.Executions().GetByID(t.Context(), notification.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionSuccess, record.Status)
	require.Len(t, record.ActionResults, 1)

	deliveries := mock.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "new@customer.io", deliveries[0].To)

	stored, err := store.Workflows().GetByID(t.Context(), "wf-pipe")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.TotalExecutions)
	assert.Equal(t, int64(1), stored.TotalSuccess)
}
