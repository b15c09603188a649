package registry

import (
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/actions/chat"
	"github.com/autoflowhq/autoflow/pkg/actions/email"
	"github.com/autoflowhq/autoflow/pkg/actions/logaction"
	"github.com/autoflowhq/autoflow/pkg/actions/notification"
	"github.com/autoflowhq/autoflow/pkg/actions/sms"
	"github.com/autoflowhq/autoflow/pkg/actions/wait"
	"github.com/autoflowhq/autoflow/pkg/actions/webhook"
	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
)

const entityTriggerSchema = `{
	"type": "object",
	"properties": {
		"kind": {"type": "string"}
	},
	"additionalProperties": false
}`

const fieldChangedTriggerSchema = `{
	"type": "object",
	"properties": {
		"kind":  {"type": "string"},
		"field": {"type": "string", "minLength": 1},
		"from":  {"type": "string"},
		"to":    {"type": "string"}
	},
	"required": ["field"],
	"additionalProperties": false
}`

const scheduleTickTriggerSchema = `{
	"type": "object",
	"properties": {
		"schedule": {"type": "string"}
	},
	"additionalProperties": false
}`

const manualTriggerSchema = `{
	"type": "object",
	"additionalProperties": false
}`

// NewDefaultRegistry builds the registry with every built-in action and
// trigger type, binding the side-effecting actions to the given
// connector set.
func NewDefaultRegistry(logger *slog.Logger, conns *connectors.Set) *Registry {
	r := NewRegistry(logger)

	r.RegisterAction(email.NewFactory(conns.Email))
	r.RegisterAction(sms.NewFactory(conns.SMS))
	r.RegisterAction(chat.NewFactory(conns.Chat))
	r.RegisterAction(notification.NewFactory(conns.Notifications))
	r.RegisterAction(webhook.NewFactory())
	r.RegisterAction(wait.NewFactory())
	r.RegisterAction(logaction.NewFactory())

	r.RegisterTriggerSchema(models.TriggerEntityCreated, entityTriggerSchema)
	r.RegisterTriggerSchema(models.TriggerEntityUpdated, entityTriggerSchema)
	r.RegisterTriggerSchema(models.TriggerEntityDeleted, entityTriggerSchema)
	r.RegisterTriggerSchema(models.TriggerFieldChanged, fieldChangedTriggerSchema)
	r.RegisterTriggerSchema(models.TriggerScheduleTick, scheduleTickTriggerSchema)
	r.RegisterTriggerSchema(models.TriggerManual, manualTriggerSchema)

	return r
}
