package models

import "time"

// BusinessEvent is the boundary envelope pushed into the dispatcher by
// the entity store, by a scheduler tick, or by a manual fire request.
type BusinessEvent struct {
	ID         string         `json:"id"`
	Type       TriggerType    `json:"type"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
