// Package schedule emits SCHEDULE_TICK business events on cron
// expressions so time-based triggers can fire.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/sources"
)

// Entry names one schedule and its cron expression. The name is carried
// in the event payload so SCHEDULE_TICK triggers can filter on it.
type Entry struct {
	Name string
	Cron string
}

type Source struct {
	entries  []Entry
	cron     *cron.Cron
	callback sources.EventCallback
	logger   *slog.Logger
}

// NewSource validates every entry's cron expression up front; a bad
// expression is a configuration error, not a runtime surprise.
func NewSource(logger *slog.Logger, timezone string, entries []Entry) (*Source, error) {
	loc := time.UTC

	if timezone != "" {
		var err error

		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}

	parser := cron.ParseStandard

	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("schedule entry with cron %q has no name", entry.Cron)
		}

		if _, err := parser(entry.Cron); err != nil {
			return nil, fmt.Errorf("invalid cron expression for schedule %q: %w", entry.Name, err)
		}
	}

	return &Source{
		entries: entries,
		cron:    cron.New(cron.WithLocation(loc)),
		logger:  logger.With("module", "schedule_source"),
	}, nil
}

func (s *Source) Start(ctx context.Context, callback sources.EventCallback) error {
	s.callback = callback

	for _, entry := range s.entries {
		if _, err := s.cron.AddFunc(entry.Cron, s.tick(ctx, entry.Name)); err != nil {
			return fmt.Errorf("failed to register schedule %q: %w", entry.Name, err)
		}
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Schedule source started", "entries", len(s.entries))

	return nil
}

func (s *Source) tick(ctx context.Context, name string) func() {
	return func() {
		event := &models.BusinessEvent{
			ID:   "evt-" + uuid.New().String()[:8],
			Type: models.TriggerScheduleTick,
			Payload: map[string]any{
				"schedule": name,
			},
			OccurredAt: time.Now().UTC(),
		}

		if err := s.callback(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to dispatch schedule tick",
				"schedule", name, "error", err)
		}
	}
}

// Stop halts the cron runner and waits for in-flight jobs.
func (s *Source) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()

	select {
	case <-stopCtx.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
