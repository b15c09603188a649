// Package wait provides the WAIT action: a pure delay that suspends
// only the issuing run.
package wait

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
)

// Action suspends the run for the configured duration, then succeeds.
// It honors context cancellation so a run's timeout budget is not
// overshot by a long wait.
type Action struct {
	Duration time.Duration
}

// NewAction creates a WAIT action from raw configuration. Duration is
// given in seconds.
func NewAction(config map[string]any) (*Action, error) {
	seconds, ok := toSeconds(config["duration"])
	if !ok || seconds < 0 {
		return nil, fmt.Errorf("missing or invalid 'duration' in configuration")
	}

	return &Action{Duration: time.Duration(seconds * float64(time.Second))}, nil
}

func toSeconds(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func (a *Action) Execute(ctx context.Context, _ models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	logger.DebugContext(ctx, "Waiting", "module", "wait_action", "duration", a.Duration)

	timer := time.NewTimer(a.Duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return map[string]any{"waited_ms": a.Duration.Milliseconds()}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("wait interrupted: %w", ctx.Err())
	}
}
