// Package models defines the core domain models for the automation engine.
package models

import (
	"sort"
	"time"
)

const (
	MinPriority = 1
	MaxPriority = 10
)

// Workflow is a named automation rule: when one of its triggers matches a
// business event and its conditions hold, its actions run in order.
type Workflow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"        validate:"required,min=3"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Category    string   `json:"category,omitempty"`

	Enabled    bool       `json:"enabled"`
	Triggers   []*Trigger `json:"triggers"             validate:"required,min=1,dive"`
	Conditions *Condition `json:"conditions,omitempty"`
	Actions    []*Action  `json:"actions"              validate:"required,min=1,dive"`

	// Execution policy. RetryDelay and Timeout are in seconds; Timeout is a
	// wall-clock budget over the whole action sequence, not per action.
	Priority   int `json:"priority"    validate:"min=1,max=10"`
	MaxRetries int `json:"max_retries" validate:"min=0"`
	RetryDelay int `json:"retry_delay" validate:"min=0"`
	Timeout    int `json:"timeout"     validate:"min=0"`

	// Lifecycle counters, monotonically updated by completed runs.
	TotalExecutions int64      `json:"total_executions"`
	TotalSuccess    int64      `json:"total_success"`
	TotalFailure    int64      `json:"total_failure"`
	LastExecutionAt *time.Time `json:"last_execution_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// SortedActions returns the actions in ascending execution order. The
// explicit Order field is authoritative over list position.
func (w *Workflow) SortedActions() []*Action {
	actions := make([]*Action, len(w.Actions))
	copy(actions, w.Actions)

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Order < actions[j].Order
	})

	return actions
}

// TimeoutDuration returns the run budget, or zero when no timeout is set.
func (w *Workflow) TimeoutDuration() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}

// RetryDelayDuration returns the fixed delay between retry attempts.
func (w *Workflow) RetryDelayDuration() time.Duration {
	return time.Duration(w.RetryDelay) * time.Second
}

// IsDeleted reports whether the workflow was soft-deleted.
func (w *Workflow) IsDeleted() bool {
	return w.DeletedAt != nil
}
