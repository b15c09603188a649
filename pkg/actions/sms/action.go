// Package sms provides the SEND_SMS action implementation.
package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// Action sends a text message through the configured SMS connector.
type Action struct {
	To   string
	Body string

	sender connectors.SMSSender
}

func NewAction(config map[string]any, sender connectors.SMSSender) (*Action, error) {
	to, _ := config["to"].(string)
	if to == "" {
		return nil, fmt.Errorf("missing or invalid 'to' in configuration")
	}

	body, _ := config["body"].(string)

	return &Action{To: to, Body: body, sender: sender}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	to := template.Resolve(a.To, data)
	body := template.Resolve(a.Body, data)

	logger.InfoContext(ctx, "Sending SMS", "module", "sms_action", "to", to)

	outcome, err := a.sender.SendSMS(ctx, to, body)
	if err != nil {
		return nil, fmt.Errorf("sms delivery failed: %w", err)
	}

	if !outcome.Success {
		return nil, fmt.Errorf("sms delivery rejected: %s", outcome.Detail)
	}

	return map[string]any{
		"to":         to,
		"latency_ms": outcome.LatencyMs,
	}, nil
}
