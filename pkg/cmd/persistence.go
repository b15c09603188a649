// Package cmd provides common initialization for the command-line
// binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/autoflowhq/autoflow/pkg/persistence"
	"github.com/autoflowhq/autoflow/pkg/persistence/file"
	"github.com/autoflowhq/autoflow/pkg/persistence/postgresql"
)

// NewPersistence selects the storage backend from the database URL:
// postgres:// (or postgresql://) connects to PostgreSQL, anything else
// is treated as a directory path for the file backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgresql: %w", err)
		}

		return store, nil
	}

	store, err := file.NewPersistence(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open file persistence at %s: %w", databaseURL, err)
	}

	return store, nil
}
