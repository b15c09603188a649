package workflow

import (
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/template"
)

// TriggerMatcher decides whether incoming business events satisfy a
// workflow's declared triggers.
//
// Event payload conventions the filters read:
//   - entity events carry `entity.kind`
//   - field transitions carry `entity.kind`, `field`, `from`, `to`
//   - schedule ticks carry `schedule`
type TriggerMatcher struct {
	logger *slog.Logger
}

func NewTriggerMatcher(logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{logger: logger.With("module", "trigger_matcher")}
}

// WorkflowMatches reports whether any of the workflow's triggers match
// the event (logical OR across the trigger list).
func (tm *TriggerMatcher) WorkflowMatches(workflow *models.Workflow, event *models.BusinessEvent) bool {
	for _, trigger := range workflow.Triggers {
		if tm.Matches(trigger, event) {
			tm.logger.Debug("Trigger matched",
				"workflow_id", workflow.ID,
				"trigger_type", trigger.Type,
				"event_type", event.Type)

			return true
		}
	}

	return false
}

// Matches reports whether one trigger matches the event: the types must
// be equal and the trigger's config filters must hold against the
// payload.
func (tm *TriggerMatcher) Matches(trigger *models.Trigger, event *models.BusinessEvent) bool {
	if trigger.Type != event.Type {
		return false
	}

	switch trigger.Type {
	case models.TriggerEntityCreated, models.TriggerEntityUpdated, models.TriggerEntityDeleted:
		return tm.matchEntity(trigger, event)
	case models.TriggerFieldChanged:
		return tm.matchFieldChanged(trigger, event)
	case models.TriggerScheduleTick:
		return tm.matchSchedule(trigger, event)
	case models.TriggerManual:
		return true
	default:
		tm.logger.Warn("Unknown trigger type", "type", trigger.Type)

		return false
	}
}

func (tm *TriggerMatcher) matchEntity(trigger *models.Trigger, event *models.BusinessEvent) bool {
	config := trigger.EntityConfig()
	if config.Kind == "" {
		return true
	}

	return payloadString(event, "entity.kind") == config.Kind
}

func (tm *TriggerMatcher) matchFieldChanged(trigger *models.Trigger, event *models.BusinessEvent) bool {
	config := trigger.FieldChangedConfig()

	if config.Kind != "" && payloadString(event, "entity.kind") != config.Kind {
		return false
	}

	if config.Field != "" && payloadString(event, "field") != config.Field {
		return false
	}

	if config.From != "" && payloadString(event, "from") != config.From {
		return false
	}

	if config.To != "" && payloadString(event, "to") != config.To {
		return false
	}

	return true
}

func (tm *TriggerMatcher) matchSchedule(trigger *models.Trigger, event *models.BusinessEvent) bool {
	config := trigger.ScheduleConfig()
	if config.Schedule == "" {
		return true
	}

	return payloadString(event, "schedule") == config.Schedule
}

func payloadString(event *models.BusinessEvent, path string) string {
	value, ok := template.Lookup(path, event.Payload)
	if !ok {
		return ""
	}

	s, _ := value.(string)

	return s
}
