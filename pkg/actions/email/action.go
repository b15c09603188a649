// Package email provides the SEND_EMAIL action implementation.
package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// Action sends an email through the configured delivery connector.
// To, Subject and Body may carry template placeholders.
type Action struct {
	To      string
	Subject string
	Body    string

	sender connectors.EmailSender
}

// NewAction creates a SEND_EMAIL action from raw configuration.
func NewAction(config map[string]any, sender connectors.EmailSender) (*Action, error) {
	to, _ := config["to"].(string)
	if to == "" {
		return nil, fmt.Errorf("missing or invalid 'to' in configuration")
	}

	subject, _ := config["subject"].(string)
	body, _ := config["body"].(string)

	return &Action{
		To:      to,
		Subject: subject,
		Body:    body,
		sender:  sender,
	}, nil
}

// Execute resolves the configuration against the run context and hands
// the message to the email connector.
func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	to := template.Resolve(a.To, data)
	subject := template.Resolve(a.Subject, data)
	body := template.Resolve(a.Body, data)

	logger = logger.With("module", "email_action", "to", to)
	logger.InfoContext(ctx, "Sending email", "subject", subject)

	outcome, err := a.sender.SendEmail(ctx, to, subject, body)
	if err != nil {
		return nil, fmt.Errorf("email delivery failed: %w", err)
	}

	if !outcome.Success {
		return nil, fmt.Errorf("email delivery rejected: %s", outcome.Detail)
	}

	return map[string]any{
		"to":         to,
		"subject":    subject,
		"latency_ms": outcome.LatencyMs,
	}, nil
}
