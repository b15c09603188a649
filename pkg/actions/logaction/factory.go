package logaction

import (
	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
)

const configSchema = `{
	"type": "object",
	"properties": {
		"message": {"type": "string"},
		"level":   {"type": "string", "enum": ["debug", "info", "warn", "error"]}
	},
	"additionalProperties": false
}`

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() models.ActionType {
	return models.ActionLog
}

func (f *Factory) Schema() string {
	return configSchema
}

func (f *Factory) Create(config map[string]any) (protocol.ActionExecutor, error) {
	return NewAction(config)
}
