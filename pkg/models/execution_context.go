package models

import "strconv"

// ExecutionContext carries the data one run exposes to templates:
// the triggering event payload, workflow metadata, and the outputs of
// actions that already completed, keyed by their order.
type ExecutionContext struct {
	ExecutionID   string         `json:"execution_id"`
	WorkflowID    string         `json:"workflow_id"`
	WorkflowName  string         `json:"workflow_name"`
	EventType     TriggerType    `json:"event_type"`
	TriggerData   map[string]any `json:"trigger_data,omitempty"`
	ActionOutputs map[string]any `json:"action_outputs,omitempty"`
}

// RecordOutput stores a completed action's output under its order key.
func (e *ExecutionContext) RecordOutput(order int, output map[string]any) {
	if output == nil {
		return
	}

	if e.ActionOutputs == nil {
		e.ActionOutputs = make(map[string]any)
	}

	e.ActionOutputs[strconv.Itoa(order)] = output
}

// TemplateData builds the root object template paths resolve against.
// Event payload keys sit at the root (so `entity.data.email` reaches
// into the payload directly) next to the reserved `event`, `workflow`
// and `actions` namespaces.
func (e *ExecutionContext) TemplateData() map[string]any {
	data := make(map[string]any, len(e.TriggerData)+3)

	for k, v := range e.TriggerData {
		data[k] = v
	}

	data["event"] = map[string]any{
		"type": string(e.EventType),
	}
	data["workflow"] = map[string]any{
		"id":   e.WorkflowID,
		"name": e.WorkflowName,
	}
	data["execution"] = map[string]any{
		"id": e.ExecutionID,
	}
	data["actions"] = e.ActionOutputs

	return data
}
