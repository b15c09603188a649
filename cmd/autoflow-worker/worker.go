// Package main provides the Autoflow worker daemon: it consumes
// business events from the bus and local sources and dispatches
// workflow runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/autoflowhq/autoflow/pkg/dispatcher"
	"github.com/autoflowhq/autoflow/pkg/eventbus"
	"github.com/autoflowhq/autoflow/pkg/events"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/registry"
	"github.com/autoflowhq/autoflow/pkg/sources"
	"github.com/autoflowhq/autoflow/pkg/sources/queue"
	"github.com/autoflowhq/autoflow/pkg/sources/schedule"
	"github.com/autoflowhq/autoflow/pkg/workflow"
)

type Config struct {
	Workers    int
	Schedules  []string
	RedisAddr  string
	RedisQueue string
}

type Worker struct {
	logger     *slog.Logger
	eventBus   eventbus.EventBus
	dispatcher *dispatcher.Dispatcher
	sources    []sources.Source
}

func NewWorker(
	logger *slog.Logger,
	store persistence.Persistence,
	reg *registry.Registry,
	eventBus eventbus.EventBus,
	config Config,
) (*Worker, error) {
	matcher := workflow.NewTriggerMatcher(logger)
	runner := workflow.NewRunner(logger, reg, store,
		workflow.WithStarted(func(ctx context.Context, record *models.ExecutionRecord) {
			started := events.ExecutionStarted{
				BaseEvent: events.BaseEvent{
					ID:        record.ID,
					Type:      events.ExecutionStartedEvent,
					Timestamp: time.Now().UTC(),
				},
				WorkflowID:  record.WorkflowID,
				ExecutionID: record.ID,
			}

			if err := eventBus.Publish(ctx, record.WorkflowID, started); err != nil {
				logger.Warn("Failed to publish execution started event",
					"execution_id", record.ID, "error", err)
			}
		}))

	d := dispatcher.NewDispatcher(
		logger,
		store,
		matcher,
		runner,
		config.Workers,
		dispatcher.WithPublisher(eventBus),
	)

	worker := &Worker{
		logger:     logger,
		eventBus:   eventBus,
		dispatcher: d,
	}

	if len(config.Schedules) > 0 {
		entries, err := parseScheduleEntries(config.Schedules)
		if err != nil {
			return nil, err
		}

		scheduleSource, err := schedule.NewSource(logger, "", entries)
		if err != nil {
			return nil, err
		}

		worker.sources = append(worker.sources, scheduleSource)
	}

	if config.RedisQueue != "" {
		queueSource, err := queue.NewSource(logger, queue.Config{
			Addr:  config.RedisAddr,
			Queue: config.RedisQueue,
		})
		if err != nil {
			return nil, err
		}

		worker.sources = append(worker.sources, queueSource)
	}

	return worker, nil
}

// Run subscribes to the bus, starts the local sources and blocks until
// the context is cancelled. Sources publish onto the bus rather than
// dispatching directly, so every event flows through one path and is
// visible to external subscribers.
func (w *Worker) Run(ctx context.Context) error {
	err := w.eventBus.Handle(events.BusinessEventReceived, func(ctx context.Context, event any) error {
		envelope, ok := event.(*events.BusinessEventEnvelope)
		if !ok {
			return fmt.Errorf("unexpected event payload %T", event)
		}

		return w.dispatcher.Dispatch(ctx, &envelope.Event)
	})
	if err != nil {
		return fmt.Errorf("failed to register event handler: %w", err)
	}

	if err := w.eventBus.Subscribe(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to event bus: %w", err)
	}

	for _, source := range w.sources {
		if err := source.Start(ctx, w.publishEvent); err != nil {
			return fmt.Errorf("failed to start event source: %w", err)
		}
	}

	w.logger.InfoContext(ctx, "Worker started", "sources", len(w.sources))

	<-ctx.Done()

	w.logger.Info("Shutting down worker")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, source := range w.sources {
		if err := source.Stop(stopCtx); err != nil {
			w.logger.Error("Failed to stop event source", "error", err)
		}
	}

	w.dispatcher.Stop()

	return nil
}

func (w *Worker) publishEvent(ctx context.Context, event *models.BusinessEvent) error {
	envelope := events.BusinessEventEnvelope{
		BaseEvent: events.BaseEvent{
			ID:        event.ID,
			Type:      events.BusinessEventReceived,
			Timestamp: time.Now().UTC(),
		},
		Event: *event,
	}

	return w.eventBus.Publish(ctx, event.ID, envelope)
}

// parseScheduleEntries decodes name=cron pairs, e.g.
// "nightly=0 2 * * *".
func parseScheduleEntries(raw []string) ([]schedule.Entry, error) {
	entries := make([]schedule.Entry, 0, len(raw))

	for _, item := range raw {
		name, expr, found := strings.Cut(item, "=")
		if !found || name == "" || expr == "" {
			return nil, fmt.Errorf("invalid schedule entry %q, expected name=cron", item)
		}

		entries = append(entries, schedule.Entry{Name: name, Cron: expr})
	}

	return entries, nil
}
