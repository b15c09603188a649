package email

import (
	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"to":      {"type": "string", "minLength": 1},
		"subject": {"type": "string"},
		"body":    {"type": "string"}
	},
	"required": ["to"],
	"additionalProperties": false
}`

// Factory builds SEND_EMAIL executors bound to an email connector.
type Factory struct {
	sender connectors.EmailSender
}

func NewFactory(sender connectors.EmailSender) *Factory {
	return &Factory{sender: sender}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendEmail
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config, f.sender)
}
