package webhook

import (
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"url":     {"type": "string", "minLength": 1},
		"method":  {"type": "string", "enum": ["GET", "POST", "PUT", "PATCH", "DELETE", "get", "post", "put", "patch", "delete"]},
		"body":    {"type": "string"},
		"headers": {"type": "object", "additionalProperties": {"type": "string"}},
		"timeout": {"type": "number", "exclusiveMinimum": 0}
	},
	"required": ["url"],
	"additionalProperties": false
}`

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionCallWebhook
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config)
}
