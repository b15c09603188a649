package notification

import (
	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"user_id": {"type": "string", "minLength": 1},
		"title":   {"type": "string"},
		"message": {"type": "string"}
	},
	"required": ["user_id"],
	"additionalProperties": false
}`

type Factory struct {
	creator connectors.NotificationCreator
}

func NewFactory(creator connectors.NotificationCreator) *Factory {
	return &Factory{creator: creator}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionCreateNotification
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config, f.creator)
}
