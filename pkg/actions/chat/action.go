// Package chat provides the SEND_CHAT_MESSAGE action implementation.
package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// Action posts a message to a chat channel through the configured
// connector.
type Action struct {
	Channel string
	Text    string

	poster connectors.ChatPoster
}

func NewAction(config map[string]any, poster connectors.ChatPoster) (*Action, error) {
	channel, _ := config["channel"].(string)
	if channel == "" {
		return nil, fmt.Errorf("missing or invalid 'channel' in configuration")
	}

	text, _ := config["text"].(string)

	return &Action{Channel: channel, Text: text, poster: poster}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	channel := template.Resolve(a.Channel, data)
	text := template.Resolve(a.Text, data)

	logger.InfoContext(ctx, "Posting chat message", "module", "chat_action", "channel", channel)

	outcome, err := a.poster.PostMessage(ctx, channel, text)
	if err != nil {
		return nil, fmt.Errorf("chat delivery failed: %w", err)
	}

	if !outcome.Success {
		return nil, fmt.Errorf("chat delivery rejected: %s", outcome.Detail)
	}

	return map[string]any{
		"channel":    channel,
		"latency_ms": outcome.LatencyMs,
	}, nil
}
