// Package events defines the envelope types carried on the event bus.
package events

import (
	"time"

	"github.com/autoflowhq/autoflow/pkg/models"
)

type EventType string

// Topic is the single bus topic all autoflow events travel on.
const Topic = "autoflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// BusinessEventReceived carries an external entity/schedule event
	// into the dispatcher.
	BusinessEventReceived EventType = "business.event.received"

	// Execution lifecycle notifications for external observers.
	ExecutionStartedEvent  EventType = "execution.started"
	ExecutionFinishedEvent EventType = "execution.finished"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// BusinessEventEnvelope wraps a BusinessEvent for bus transport.
type BusinessEventEnvelope struct {
	BaseEvent

	Event models.BusinessEvent `json:"event"`
}

func (e BusinessEventEnvelope) GetType() EventType {
	return BusinessEventReceived
}

type ExecutionStarted struct {
	BaseEvent

	WorkflowID  string `json:"workflow_id"`
	ExecutionID string `json:"execution_id"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type ExecutionFinished struct {
	BaseEvent

	WorkflowID  string                 `json:"workflow_id"`
	ExecutionID string                 `json:"execution_id"`
	Status      models.ExecutionStatus `json:"status"`
	DurationMs  int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}
