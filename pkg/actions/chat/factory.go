package chat

import (
	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"channel": {"type": "string", "minLength": 1},
		"text":    {"type": "string"}
	},
	"required": ["channel"],
	"additionalProperties": false
}`

type Factory struct {
	poster connectors.ChatPoster
}

func NewFactory(poster connectors.ChatPoster) *Factory {
	return &Factory{poster: poster}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendChatMessage
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config, f.poster)
}
