package models

import "time"

// ExecutionStatus is the lifecycle state of one workflow run.
// SUCCESS and FAILED are terminal.
type ExecutionStatus string

const (
	ExecutionPending ExecutionStatus = "PENDING"
	ExecutionRunning ExecutionStatus = "RUNNING"
	ExecutionSuccess ExecutionStatus = "SUCCESS"
	ExecutionFailed  ExecutionStatus = "FAILED"
)

// ErrorKind classifies why a run or action attempt failed.
type ErrorKind string

const (
	// ErrorKindConfiguration marks a malformed workflow definition
	// (empty condition group, unknown operator or type). Never retried.
	ErrorKindConfiguration ErrorKind = "CONFIGURATION_ERROR"
	// ErrorKindActionExecution marks a failed action attempt. Retried
	// per the workflow's policy.
	ErrorKindActionExecution ErrorKind = "ACTION_EXECUTION_ERROR"
	// ErrorKindTimeout marks a breach of the run's wall-clock budget.
	ErrorKindTimeout ErrorKind = "TIMEOUT_ERROR"
	// ErrorKindEvaluation is reserved for unrecoverable condition
	// evaluation states; the evaluator is fail-closed so it should not
	// occur in practice.
	ErrorKindEvaluation ErrorKind = "EVALUATION_ERROR"
)

// ActionResult records the outcome of one action within a run. Attempt is
// the number of attempts consumed, including the final one.
type ActionResult struct {
	ActionOrder int             `json:"action_order"`
	ActionType  ActionType      `json:"action_type"`
	Status      ExecutionStatus `json:"status"`
	Attempt     int             `json:"attempt"`
	DurationMs  int64           `json:"duration_ms"`
	Output      map[string]any  `json:"output,omitempty"`
	Error       string          `json:"error,omitempty"`
	ErrorKind   ErrorKind       `json:"error_kind,omitempty"`
}

// ExecutionRecord is the audit entry for one workflow run against one
// event. It is owned exclusively by its runner until finalized, then
// becomes immutable history that outlives updates and deletes of the
// workflow it references.
type ExecutionRecord struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	Status         ExecutionStatus `json:"status"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"`
	DurationMs     int64           `json:"duration_ms"`
	TriggerContext map[string]any  `json:"trigger_context,omitempty"`
	ActionResults  []ActionResult  `json:"action_results"`
	Error          string          `json:"error,omitempty"`
	ErrorKind      ErrorKind       `json:"error_kind,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// IsTerminal reports whether the record reached a final status.
func (r *ExecutionRecord) IsTerminal() bool {
	return r.Status == ExecutionSuccess || r.Status == ExecutionFailed
}
