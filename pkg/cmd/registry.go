package cmd

import (
	"log/slog"

	"github.com/autoflowhq/autoflow/pkg/connectors"
	"github.com/autoflowhq/autoflow/pkg/registry"
)

// NewRegistry builds the action/trigger registry with the full native
// set. Delivery goes through logging connectors until real providers
// are plugged in.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	return registry.NewDefaultRegistry(logger, connectors.NewLoggingSet(logger))
}
