package sms

import (
	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"to":   {"type": "string", "minLength": 1},
		"body": {"type": "string"}
	},
	"required": ["to"],
	"additionalProperties": false
}`

type Factory struct {
	sender connectors.SMSSender
}

func NewFactory(sender connectors.SMSSender) *Factory {
	return &Factory{sender: sender}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendSMS
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config, f.sender)
}
