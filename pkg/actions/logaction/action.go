// Package logaction provides the LOG action: writes a templated message
// to the engine log. Useful when wiring up a workflow before real
// connectors are configured.
package logaction

import (
	"context"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

type Action struct {
	Message string
	Level   string
}

func NewAction(config map[string]any) (*Action, error) {
	message, _ := config["message"].(string)

	level, _ := config["level"].(string)
	if level == "" {
		level = "info"
	}

	return &Action{Message: message, Level: level}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	message := template.Resolve(a.Message, executionCtx.TemplateData())

	logger = logger.With("module", "log_action", "workflow_id", executionCtx.WorkflowID)

	switch a.Level {
	case "debug":
		logger.DebugContext(ctx, message)
	case "warn":
		logger.WarnContext(ctx, message)
	case "error":
		logger.ErrorContext(ctx, message)
	default:
		logger.InfoContext(ctx, message)
	}

	return map[string]any{"message": message}, nil
}
