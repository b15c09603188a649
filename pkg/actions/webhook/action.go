// Package webhook provides the CALL_WEBHOOK action implementation.
package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

const (
	defaultTimeoutSeconds = 30
	maxResponseBytes      = 1 << 20
)

// Action performs an HTTP call to a configured URL. URL, body and header
// values may carry template placeholders. A response status of 400 or
// above counts as a failed attempt.
type Action struct {
	URL     string
	Method  string
	Body    string
	Headers map[string]string
	Timeout time.Duration

	client *http.Client
}

// NewAction creates a CALL_WEBHOOK action from raw configuration.
func NewAction(config map[string]any) (*Action, error) {
	url, _ := config["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("missing or invalid 'url' in configuration")
	}

	method, _ := config["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	body, _ := config["body"].(string)

	headers := make(map[string]string)

	if headersConfig, exists := config["headers"]; exists {
		headersMap, ok := headersConfig.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid 'headers' in configuration")
		}

		for k, v := range headersMap {
			strVal, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("invalid header value for %q", k)
			}

			headers[k] = strVal
		}
	}

	timeout := defaultTimeoutSeconds * time.Second
	if seconds, ok := config["timeout"].(float64); ok && seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	return &Action{
		URL:     url,
		Method:  strings.ToUpper(method),
		Body:    body,
		Headers: headers,
		Timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Execute resolves the configuration and performs the HTTP call.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	url := template.Resolve(a.URL, data)
	body := template.Resolve(a.Body, data)

	logger = logger.With("module", "webhook_action", "method", a.Method, "url", url)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, a.Method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook request: %w", err)
	}

	for key, value := range a.Headers {
		req.Header.Set(key, template.Resolve(value, data))
	}

	if req.Header.Get("Content-Type") == "" && body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	latency := time.Since(started)

	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook response: %w", err)
	}

	logger.InfoContext(ctx, "Webhook call completed",
		"status_code", resp.StatusCode,
		"latency_ms", latency.Milliseconds())

	output := map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(responseBody),
		"latency_ms":  latency.Milliseconds(),
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return output, fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return output, nil
}
