// Package dispatcher routes business events to matching workflow runs
// through a bounded worker pool.
package dispatcher

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/autoflowhq/autoflow/pkg/eventbus"
	"github.com/autoflowhq/autoflow/pkg/events"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/workflow"
)

const DefaultWorkers = 8

// WorkflowRunner executes one workflow against one event.
// *workflow.Runner satisfies it.
type WorkflowRunner interface {
	Run(ctx context.Context, wf *models.Workflow, event *models.BusinessEvent) (*models.ExecutionRecord, error)
}

// task pairs one workflow with the event that fired it.
type task struct {
	workflow *models.Workflow
	event    *models.BusinessEvent
}

// Dispatcher fans business events out to runners. Dispatch is
// fire-and-observe: callers never block on run completion, and a
// failing run never affects the dispatcher or sibling runs.
type Dispatcher struct {
	logger    *slog.Logger
	store     persistence.Persistence
	matcher   *workflow.TriggerMatcher
	runner    WorkflowRunner
	publisher eventbus.EventPublisher

	tasks chan task
	wg    sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

type Option func(*Dispatcher)

// WithPublisher republishes execution lifecycle notifications on the
// event bus for external observers.
func WithPublisher(pub eventbus.EventPublisher) Option {
	return func(d *Dispatcher) {
		d.publisher = pub
	}
}

// WithQueueSize overrides the pending task buffer. Once full, Dispatch
// blocks until workers drain the queue, keeping backpressure FIFO.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.tasks = make(chan task, n)
		}
	}
}

func NewDispatcher(
	logger *slog.Logger,
	store persistence.Persistence,
	matcher *workflow.TriggerMatcher,
	runner WorkflowRunner,
	workers int,
	opts ...Option,
) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	d := &Dispatcher{
		logger:  logger.With("module", "dispatcher"),
		store:   store,
		matcher: matcher,
		runner:  runner,
		tasks:   make(chan task, workers*16),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.startOnce.Do(func() {
		for range workers {
			d.wg.Add(1)

			go d.worker()
		}
	})

	return d
}

// Dispatch selects every enabled workflow with at least one trigger
// matching the event, orders them by priority descending with the
// workflow id breaking ties, and submits each to the pool. Submissions
// preserve that order because the pool queue is FIFO.
func (d *Dispatcher) Dispatch(ctx context.Context, event *models.BusinessEvent) error {
	workflows, err := d.store.Workflows().ListEnabled(ctx)
	if err != nil {
		return err
	}

	matched := make([]*models.Workflow, 0, len(workflows))

	for _, wf := range workflows {
		if d.matcher.WorkflowMatches(wf, event) {
			matched = append(matched, wf)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority > matched[j].Priority
		}

		return matched[i].ID < matched[j].ID
	})

	for _, wf := range matched {
		select {
		case d.tasks <- task{workflow: wf, event: event}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	d.logger.DebugContext(ctx, "Dispatched event",
		"event_type", event.Type, "matched", len(matched))

	return nil
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for t := range d.tasks {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx := context.Background()

	record, err := d.runner.Run(ctx, t.workflow, t.event)
	if err != nil {
		d.logger.Error("Workflow run failed",
			"workflow_id", t.workflow.ID, "error", err)
	}

	if record == nil {
		return
	}

	d.notifyFinished(ctx, record)
}

func (d *Dispatcher) notifyFinished(ctx context.Context, record *models.ExecutionRecord) {
	if d.publisher == nil {
		return
	}

	event := events.ExecutionFinished{
		BaseEvent: events.BaseEvent{
			ID:        record.ID,
			Type:      events.ExecutionFinishedEvent,
			Timestamp: time.Now().UTC(),
		},
		WorkflowID:  record.WorkflowID,
		ExecutionID: record.ID,
		Status:      record.Status,
		DurationMs:  record.DurationMs,
		Error:       record.Error,
	}

	if err := d.publisher.Publish(ctx, record.WorkflowID, event); err != nil {
		d.logger.Warn("Failed to publish execution finished event",
			"execution_id", record.ID, "error", err)
	}
}

// Stop closes the task queue and waits for in-flight runs to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.tasks)
	})

	d.wg.Wait()
}
