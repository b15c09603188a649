package email_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/actions/email"
	"github.com/autoflowhq/autoflow/pkg/mocks"
	"github.com/autoflowhq/autoflow/pkg/models"
)

func TestNewActionRequiresRecipient(t *testing.T) {
	t.Parallel()

	mock := mocks.NewConnectorMock()

	_, err := email.NewAction(map[string]any{"subject": "s"}, mock)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'to'")

	_, err = email.NewAction(map[string]any{"to": ""}, mock)
	assert.Error(t, err)
}

func TestExecuteResolvesTemplates(t *testing.T) {
	t.Parallel()

	mock := mocks.NewConnectorMock()

	action, err := email.NewAction(map[string]any{
		"to":      "{{entity.data.email}}",
		"subject": "Order {{entity.data.number}} confirmed",
		"body":    "Thanks, {{entity.data.name}}!",
	}, mock)
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		TriggerData: map[string]any{
			"entity": map[string]any{
				"kind": "order",
				"data": map[string]any{
					"email":  "jo@example.com",
					"number": "1042",
					"name":   "Jo",
				},
			},
		},
	}

	output, err := action.Execute(t.Context(), executionCtx, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	assert.Equal(t, "jo@example.com", output["to"])

	deliveries := mock.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "jo@example.com", deliveries[0].To)
	assert.Equal(t, "Order 1042 confirmed", deliveries[0].Subject)
	assert.Equal(t, "Thanks, Jo!", deliveries[0].Body)
}

func TestExecutePropagatesDeliveryFailure(t *testing.T) {
	t.Parallel()

	mock := mocks.NewConnectorMock().FailFirst(1)

	action, err := email.NewAction(map[string]any{"to": "a@b.com"}, mock)
	require.NoError(t, err)

	_, err = action.Execute(t.Context(), models.ExecutionContext{}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email delivery failed")
}
