// Package sources defines the contract for local event producers that
// feed business events into the dispatcher alongside the event bus.
package sources

import (
	"context"

	"github.com/autoflowhq/autoflow/pkg/models"
)

// EventCallback receives each business event a source produces.
type EventCallback func(ctx context.Context, event *models.BusinessEvent) error

// Source is a long-running event producer. Start returns once the source
// is consuming; Stop blocks until in-flight work drains.
type Source interface {
	Start(ctx context.Context, callback EventCallback) error
	Stop(ctx context.Context) error
}
