// Package web provides the REST API for workflow management and
// execution history.
package web

import "github.com/autoflowhq/autoflow/pkg/models"

// CreateWorkflowRequest is the request body for creating a workflow.
// Triggers, conditions and actions are validated semantically by the
// service layer against the registered type schemas.
type CreateWorkflowRequest struct {
	Name        string             `json:"name"                 validate:"required,min=3"`
	Description string             `json:"description"`
	Tags        []string           `json:"tags,omitempty"`
	Category    string             `json:"category,omitempty"`
	Enabled     *bool              `json:"enabled,omitempty"`
	Triggers    []*models.Trigger  `json:"triggers"             validate:"required,min=1"`
	Conditions  *models.Condition  `json:"conditions,omitempty"`
	Actions     []*models.Action   `json:"actions"              validate:"required,min=1"`
	Priority    int                `json:"priority,omitempty"   validate:"omitempty,min=1,max=10"`
	MaxRetries  int                `json:"max_retries,omitempty" validate:"omitempty,min=0"`
	RetryDelay  int                `json:"retry_delay,omitempty" validate:"omitempty,min=0"`
	Timeout     int                `json:"timeout,omitempty"     validate:"omitempty,min=0"`
}

// UpdateWorkflowRequest supports partial updates; absent fields keep
// their current values.
type UpdateWorkflowRequest struct {
	Name        *string           `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string           `json:"description,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Category    *string           `json:"category,omitempty"`
	Triggers    []*models.Trigger `json:"triggers,omitempty"`
	Conditions  *models.Condition `json:"conditions,omitempty"`
	Actions     []*models.Action  `json:"actions,omitempty"`
	Priority    *int              `json:"priority,omitempty"    validate:"omitempty,min=1,max=10"`
	MaxRetries  *int              `json:"max_retries,omitempty" validate:"omitempty,min=0"`
	RetryDelay  *int              `json:"retry_delay,omitempty" validate:"omitempty,min=0"`
	Timeout     *int              `json:"timeout,omitempty"     validate:"omitempty,min=0"`
}

// TriggerWorkflowRequest is the body for manually firing a workflow.
// The payload becomes the firing event's payload.
type TriggerWorkflowRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
}

func (r *CreateWorkflowRequest) toWorkflow() *models.Workflow {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}

	return &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
		Category:    r.Category,
		Enabled:     enabled,
		Triggers:    r.Triggers,
		Conditions:  r.Conditions,
		Actions:     r.Actions,
		Priority:    r.Priority,
		MaxRetries:  r.MaxRetries,
		RetryDelay:  r.RetryDelay,
		Timeout:     r.Timeout,
	}
}

func (r *UpdateWorkflowRequest) applyTo(workflow *models.Workflow) {
	if r.Name != nil {
		workflow.Name = *r.Name
	}

	if r.Description != nil {
		workflow.Description = *r.Description
	}

	if r.Tags != nil {
		workflow.Tags = r.Tags
	}

	if r.Category != nil {
		workflow.Category = *r.Category
	}

	if r.Triggers != nil {
		workflow.Triggers = r.Triggers
	}

	if r.Conditions != nil {
		workflow.Conditions = r.Conditions
	}

	if r.Actions != nil {
		workflow.Actions = r.Actions
	}

	if r.Priority != nil {
		workflow.Priority = *r.Priority
	}

	if r.MaxRetries != nil {
		workflow.MaxRetries = *r.MaxRetries
	}

	if r.RetryDelay != nil {
		workflow.RetryDelay = *r.RetryDelay
	}

	if r.Timeout != nil {
		workflow.Timeout = *r.Timeout
	}
}
