package models

// TriggerType enumerates the business events a workflow can fire on.
type TriggerType string

const (
	TriggerEntityCreated TriggerType = "ENTITY_CREATED"
	TriggerEntityUpdated TriggerType = "ENTITY_UPDATED"
	TriggerEntityDeleted TriggerType = "ENTITY_DELETED"
	TriggerFieldChanged  TriggerType = "FIELD_CHANGED"
	TriggerScheduleTick  TriggerType = "SCHEDULE_TICK"
	TriggerManual        TriggerType = "MANUAL"
)

// TriggerTypes lists every known trigger type. Definitions referencing a
// type outside this set are rejected at validation time.
func TriggerTypes() []TriggerType {
	return []TriggerType{
		TriggerEntityCreated,
		TriggerEntityUpdated,
		TriggerEntityDeleted,
		TriggerFieldChanged,
		TriggerScheduleTick,
		TriggerManual,
	}
}

// Trigger declares one event match condition. Config carries the
// trigger-type-specific filter data, validated against the type's schema
// when the workflow definition is accepted.
type Trigger struct {
	Type   TriggerType    `json:"type"             validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// EntityTriggerConfig is the typed filter shape for the entity lifecycle
// trigger types (created, updated, deleted).
type EntityTriggerConfig struct {
	Kind string `json:"kind,omitempty"`
}

// FieldChangedConfig is the typed filter shape for FIELD_CHANGED.
// Empty From/To match any transition of the named field.
type FieldChangedConfig struct {
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// ScheduleTickConfig is the typed filter shape for SCHEDULE_TICK.
type ScheduleTickConfig struct {
	Schedule string `json:"schedule,omitempty"`
}

func (t *Trigger) configString(key string) string {
	if t.Config == nil {
		return ""
	}

	value, _ := t.Config[key].(string)

	return value
}

// EntityConfig decodes the trigger config as an entity lifecycle filter.
func (t *Trigger) EntityConfig() EntityTriggerConfig {
	return EntityTriggerConfig{Kind: t.configString("kind")}
}

// FieldChangedConfig decodes the trigger config as a field transition filter.
func (t *Trigger) FieldChangedConfig() FieldChangedConfig {
	return FieldChangedConfig{
		Kind:  t.configString("kind"),
		Field: t.configString("field"),
		From:  t.configString("from"),
		To:    t.configString("to"),
	}
}

// ScheduleConfig decodes the trigger config as a schedule filter.
func (t *Trigger) ScheduleConfig() ScheduleTickConfig {
	return ScheduleTickConfig{Schedule: t.configString("schedule")}
}
