// Package protocol defines the contracts between the execution engine
// and the pluggable action implementations.
package protocol

import (
	"context"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/models"
)

// ActionExecutor executes one configured action against a run context.
// Implementations resolve template placeholders in their configuration
// at execution time and must report failures as errors, never panic.
type ActionExecutor interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory builds executors for one action type. Create validates
// the raw configuration; definitions with invalid config are rejected
// before the workflow is accepted. Schema returns the JSON schema the
// registry enforces against the config at validation time.
type ActionFactory interface {
	ID() models.ActionType
	Create(config map[string]any) (ActionExecutor, error)
	Schema() string
}
