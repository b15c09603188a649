// Package registry holds the closed dispatch table of action and
// trigger types. Unknown types and malformed configs are rejected when
// a workflow definition is accepted, not when it first fires.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/models"
	"github.com/autoflowhq/autoflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[models.ActionType]protocol.ActionFactory
	actionSchemas   map[models.ActionType]*gojsonschema.Schema
	triggerSchemas  map[models.TriggerType]*gojsonschema.Schema
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger.With("module", "registry"),
		actionFactories: make(map[models.ActionType]protocol.ActionFactory),
		actionSchemas:   make(map[models.ActionType]*gojsonschema.Schema),
		triggerSchemas:  make(map[models.TriggerType]*gojsonschema.Schema),
	}
}

// RegisterAction adds an action factory to the dispatch table and
// compiles its config schema. Panics on a schema that does not compile;
// schemas are package constants, so this is a startup-time failure.
func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(factory.Schema()))
	if err != nil {
		panic(fmt.Errorf("invalid config schema for action %s: %w", factory.ID(), err))
	}

	r.actionFactories[factory.ID()] = factory
	r.actionSchemas[factory.ID()] = schema

	r.logger.Debug("Registered action type", "type", factory.ID())
}

// RegisterTriggerSchema adds the config schema for a trigger type.
func (r *Registry) RegisterTriggerSchema(triggerType models.TriggerType, rawSchema string) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rawSchema))
	if err != nil {
		panic(fmt.Errorf("invalid config schema for trigger %s: %w", triggerType, err))
	}

	r.triggerSchemas[triggerType] = schema
}

// CreateExecutor builds the executor for one action. An unregistered
// type is a configuration error, never a panic.
func (r *Registry) CreateExecutor(action *models.Action) (protocol.ActionExecutor, error) {
	factory, ok := r.actionFactories[action.Type]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered", action.Type)
	}

	config := action.Config
	if config == nil {
		config = map[string]any{}
	}

	return factory.Create(config)
}

// ActionTypes returns the registered action types.
func (r *Registry) ActionTypes() []models.ActionType {
	types := make([]models.ActionType, 0, len(r.actionFactories))
	for t := range r.actionFactories {
		types = append(types, t)
	}

	return types
}

// ValidateWorkflow checks a definition against the dispatch table:
// every trigger and action type must be registered, every config must
// satisfy its type's schema, and the condition tree must be well
// formed. Called by the definition API before a workflow is persisted.
func (r *Registry) ValidateWorkflow(workflow *models.Workflow) error {
	for i, trigger := range workflow.Triggers {
		schema, ok := r.triggerSchemas[trigger.Type]
		if !ok {
			return fmt.Errorf("trigger %d: unknown trigger type %q", i+1, trigger.Type)
		}

		if err := validateAgainst(schema, trigger.Config); err != nil {
			return fmt.Errorf("trigger %d (%s): %w", i+1, trigger.Type, err)
		}
	}

	if err := workflow.Conditions.Validate(); err != nil {
		return fmt.Errorf("conditions: %w", err)
	}

	seenOrders := make(map[int]bool, len(workflow.Actions))

	for i, action := range workflow.Actions {
		schema, ok := r.actionSchemas[action.Type]
		if !ok {
			return fmt.Errorf("action %d: unknown action type %q", i+1, action.Type)
		}

		if err := validateAgainst(schema, action.Config); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, action.Type, err)
		}

		if seenOrders[action.Order] {
			return fmt.Errorf("action %d: duplicate order %d", i+1, action.Order)
		}

		seenOrders[action.Order] = true

		// Creating the executor exercises the factory's own parsing, so
		// config problems the schema cannot express surface here too.
		if _, err := r.CreateExecutor(action); err != nil {
			return fmt.Errorf("action %d (%s): %w", i+1, action.Type, err)
		}
	}

	return nil
}

func validateAgainst(schema *gojsonschema.Schema, config map[string]any) error {
	if config == nil {
		config = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(config))
	if err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if !result.Valid() {
		return fmt.Errorf("invalid config: %s", result.Errors()[0].String())
	}

	return nil
}
