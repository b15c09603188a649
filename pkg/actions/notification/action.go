// Package notification provides the CREATE_NOTIFICATION action
// implementation.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// Action creates an in-app notification for a user.
type Action struct {
	UserID  string
	Title   string
	Message string

	creator connectors.NotificationCreator
}

func NewAction(config map[string]any, creator connectors.NotificationCreator) (*Action, error) {
	userID, _ := config["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("missing or invalid 'user_id' in configuration")
	}

	title, _ := config["title"].(string)
	message, _ := config["message"].(string)

	return &Action{UserID: userID, Title: title, Message: message, creator: creator}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	userID := template.Resolve(a.UserID, data)
	title := template.Resolve(a.Title, data)
	message := template.Resolve(a.Message, data)

	logger.InfoContext(ctx, "Creating notification", "module", "notification_action", "user_id", userID)

	outcome, err := a.creator.CreateNotification(ctx, userID, title, message)
	if err != nil {
		return nil, fmt.Errorf("notification creation failed: %w", err)
	}

	if !outcome.Success {
		return nil, fmt.Errorf("notification creation rejected: %s", outcome.Detail)
	}

	return map[string]any{
		"user_id":    userID,
		"title":      title,
		"latency_ms": outcome.LatencyMs,
	}, nil
}
