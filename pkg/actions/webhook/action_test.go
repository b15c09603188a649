package webhook_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autoflowhq/autoflow/pkg/actions/webhook"
	"github.com/autoflowhq/autoflow/pkg/models"
)

func TestNewActionConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  map[string]any
		wantErr bool
	}{
		{"valid", map[string]any{"url": "https://example.com/hook"}, false},
		{"missing url", map[string]any{"method": "POST"}, true},
		{"bad headers shape", map[string]any{"url": "https://example.com", "headers": "nope"}, true},
		{"bad header value", map[string]any{"url": "https://example.com", "headers": map[string]any{"X": 1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := webhook.NewAction(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecuteResolvesTemplatesAndPosts(t *testing.T) {
	t.Parallel()

	var gotBody, gotHeader, gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		gotHeader = r.Header.Get("X-Entity")
		gotMethod = r.Method

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	action, err := webhook.NewAction(map[string]any{
		"url":     server.URL,
		"body":    `{"kind":"{{entity.kind}}"}`,
		"headers": map[string]any{"X-Entity": "{{entity.kind}}"},
	})
	require.NoError(t, err)

	executionCtx := models.ExecutionContext{
		TriggerData: map[string]any{
			"entity": map[string]any{"kind": "order"},
		},
	}

	output, err := action.Execute(t.Context(), executionCtx, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	assert.Equal(t, `{"kind":"order"}`, gotBody)
	assert.Equal(t, "order", gotHeader)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, http.StatusOK, output["status_code"])
	assert.Equal(t, `{"ok":true}`, output["body"])
}

func TestExecuteErrorStatusFailsAttempt(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	action, err := webhook.NewAction(map[string]any{"url": server.URL})
	require.NoError(t, err)

	output, err := action.Execute(t.Context(), models.ExecutionContext{}, slog.New(slog.DiscardHandler))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, http.StatusBadGateway, output["status_code"])
}

func TestExecuteConnectionRefused(t *testing.T) {
	t.Parallel()

	action, err := webhook.NewAction(map[string]any{"url": "http://127.0.0.1:1/unreachable", "timeout": 1.0})
	require.NoError(t, err)

	_, err = action.Execute(t.Context(), models.ExecutionContext{}, slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}
