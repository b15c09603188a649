package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/autoflowhq/autoflow/pkg/conditions"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/otelhelper"
	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/protocol"
	"github.com/autoflowhq/autoflow/pkg/registry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const conditionsNotMetNote = "conditions not met"

// Runner drives one workflow execution through its state machine:
// PENDING -> RUNNING -> {SUCCESS, FAILED}. A runner instance is safe for
// concurrent use; each Run owns its own execution record.
type Runner struct {
	logger    *slog.Logger
	registry  *registry.Registry
	store     persistence.Persistence
	tracer    trace.Tracer
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	onStarted func(ctx context.Context, record *models.ExecutionRecord)
}

type RunnerOption func(*Runner)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithSleep replaces the retry/backoff sleeper, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) RunnerOption {
	return func(r *Runner) { r.sleep = sleep }
}

// WithStarted registers a hook invoked once a run transitions to
// RUNNING, before any action executes.
func WithStarted(hook func(ctx context.Context, record *models.ExecutionRecord)) RunnerOption {
	return func(r *Runner) { r.onStarted = hook }
}

func NewRunner(logger *slog.Logger, reg *registry.Registry, store persistence.Persistence, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:   logger.With("module", "workflow_runner"),
		registry: reg,
		store:    store,
		tracer:   otel.Tracer("autoflow/runner"),
		now:      time.Now,
		sleep:    sleepContext,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one workflow firing against one event and returns the
// finalized execution record. Failures of the run are terminal states
// on the record, not returned errors; the error return reports
// persistence problems only.
func (r *Runner) Run(ctx context.Context, wf *models.Workflow, event *models.BusinessEvent) (*models.ExecutionRecord, error) {
	record := &models.ExecutionRecord{
		ID:             generateExecutionID(),
		WorkflowID:     wf.ID,
		Status:         models.ExecutionPending,
		TriggerContext: event.Payload,
		ActionResults:  make([]models.ActionResult, 0, len(wf.Actions)),
	}

	logger := r.logger.With("workflow_id", wf.ID, "execution_id", record.ID)

	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.run",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
		attribute.String(otelhelper.EventTypeKey, string(event.Type)))
	defer span.End()

	if err := r.store.Executions().Create(ctx, record); err != nil {
		return record, fmt.Errorf("failed to create execution record: %w", err)
	}

	record.Status = models.ExecutionRunning
	record.StartedAt = r.now()

	if err := r.store.Executions().Update(ctx, record); err != nil {
		return record, fmt.Errorf("failed to mark execution running: %w", err)
	}

	logger.Info("Execution started", "event_type", event.Type)

	if r.onStarted != nil {
		r.onStarted(ctx, record)
	}

	budget := wf.TimeoutDuration()
	if budget > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithDeadline(ctx, record.StartedAt.Add(budget))
		defer cancel()
	}

	executionCtx := models.ExecutionContext{
		ExecutionID:  record.ID,
		WorkflowID:   wf.ID,
		WorkflowName: wf.Name,
		EventType:    event.Type,
		TriggerData:  event.Payload,
	}

	met, err := conditions.Evaluate(wf.Conditions, executionCtx.TemplateData())
	if err != nil {
		logger.Warn("Condition tree is malformed", "error", err)

		return r.finalize(ctx, logger, wf, record, newConfigurationError(err))
	}

	if !met {
		// A workflow that correctly declines to act succeeded.
		record.Note = conditionsNotMetNote
		logger.Info("Conditions not met, skipping actions")

		return r.finalize(ctx, logger, wf, record, nil)
	}

	for _, action := range wf.SortedActions() {
		if err := r.runAction(ctx, logger, wf, record, &executionCtx, action); err != nil {
			return r.finalize(ctx, logger, wf, record, err)
		}
	}

	return r.finalize(ctx, logger, wf, record, nil)
}

// runAction executes one action with the workflow's retry policy. It
// appends exactly one ActionResult to the record and returns a non-nil
// error when the run must abort.
func (r *Runner) runAction(
	ctx context.Context,
	logger *slog.Logger,
	wf *models.Workflow,
	record *models.ExecutionRecord,
	executionCtx *models.ExecutionContext,
	action *models.Action,
) error {
	result := models.ActionResult{
		ActionOrder: action.Order,
		ActionType:  action.Type,
		Status:      models.ExecutionFailed,
	}

	executor, err := r.registry.CreateExecutor(action)
	if err != nil {
		configErr := newConfigurationError(err)
		result.Error = err.Error()
		result.ErrorKind = models.ErrorKindConfiguration
		record.ActionResults = append(record.ActionResults, result)

		return configErr
	}

	budget := wf.TimeoutDuration()
	actionLogger := logger.With("action_order", action.Order, "action_type", action.Type)

	var lastErr error

	for attempt := 1; ; attempt++ {
		if r.overBudget(record.StartedAt, budget) {
			timeoutErr := newTimeoutError(fmt.Errorf("run exceeded %s budget", budget))

			if attempt > 1 {
				// Attempts already spent on this action stay on the record;
				// an action the breach prevented entirely leaves no result.
				result.Attempt = attempt - 1
				result.Error = timeoutErr.Error()
				result.ErrorKind = models.ErrorKindTimeout
				record.ActionResults = append(record.ActionResults, result)
			}

			return timeoutErr
		}

		started := r.now()

		ctx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.action",
			attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
			attribute.Int(otelhelper.ActionOrderKey, action.Order),
			attribute.Int(otelhelper.AttemptKey, attempt))

		output, execErr := safeExecute(ctx, executor, *executionCtx, actionLogger)

		duration := r.now().Sub(started)
		result.DurationMs += duration.Milliseconds()

		if execErr == nil {
			span.End()

			result.Status = models.ExecutionSuccess
			result.Attempt = attempt
			result.Output = output
			record.ActionResults = append(record.ActionResults, result)
			executionCtx.RecordOutput(action.Order, output)

			actionLogger.Info("Action succeeded", "attempt", attempt, "duration_ms", duration.Milliseconds())

			return nil
		}

		otelhelper.RecordError(span, execErr)
		span.End()

		lastErr = execErr
		actionLogger.Warn("Action attempt failed", "attempt", attempt, "error", execErr)

		if errors.Is(execErr, context.DeadlineExceeded) || r.overBudget(record.StartedAt, budget) {
			result.Attempt = attempt
			timeoutErr := newTimeoutError(fmt.Errorf("run exceeded %s budget: %w", budget, execErr))
			result.Error = timeoutErr.Error()
			result.ErrorKind = models.ErrorKindTimeout
			record.ActionResults = append(record.ActionResults, result)

			return timeoutErr
		}

		if attempt > wf.MaxRetries {
			result.Attempt = attempt
			result.Error = lastErr.Error()
			result.ErrorKind = classify(lastErr)
			record.ActionResults = append(record.ActionResults, result)

			return &RunError{Kind: result.ErrorKind, Err: fmt.Errorf("action %d failed after %d attempts: %w", action.Order, attempt, lastErr)}
		}

		if err := r.sleep(ctx, wf.RetryDelayDuration()); err != nil {
			// The sleep was cut short by the run deadline.
			result.Attempt = attempt
			timeoutErr := newTimeoutError(fmt.Errorf("run exceeded %s budget during retry delay", budget))
			result.Error = timeoutErr.Error()
			result.ErrorKind = models.ErrorKindTimeout
			record.ActionResults = append(record.ActionResults, result)

			return timeoutErr
		}
	}
}

func (r *Runner) overBudget(started time.Time, budget time.Duration) bool {
	return budget > 0 && r.now().Sub(started) > budget
}

// safeExecute converts executor panics into errors so a misbehaving
// action cannot take down the dispatcher.
func safeExecute(
	ctx context.Context,
	executor protocol.ActionExecutor,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (output map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("action panicked: %v", rec)
		}
	}()

	return executor.Execute(ctx, executionCtx, logger)
}

// finalize transitions the record to its terminal status and persists
// it together with the workflow counter updates in one repository call.
func (r *Runner) finalize(
	ctx context.Context,
	logger *slog.Logger,
	wf *models.Workflow,
	record *models.ExecutionRecord,
	runErr error,
) (*models.ExecutionRecord, error) {
	finishedAt := r.now()
	record.FinishedAt = &finishedAt
	record.DurationMs = finishedAt.Sub(record.StartedAt).Milliseconds()

	if runErr != nil {
		record.Status = models.ExecutionFailed
		record.Error = runErr.Error()
		record.ErrorKind = classify(runErr)
	} else {
		record.Status = models.ExecutionSuccess
	}

	logger.Info("Execution finished",
		"status", record.Status,
		"duration_ms", record.DurationMs,
		"actions", len(record.ActionResults))

	// Finalize must not be cut short by an expired run deadline; the
	// record and counters still have to be written.
	if err := r.store.Executions().Finalize(context.WithoutCancel(ctx), record); err != nil {
		return record, fmt.Errorf("failed to finalize execution %s: %w", record.ID, err)
	}

	return record, nil
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
