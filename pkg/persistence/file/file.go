// Package file provides file-based persistence for workflows and
// execution records. JSON files on disk, one per record; good for
// development and tests, not for contended production use.
package file

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/autoflowhq/autoflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the file system.
// A single mutex serializes every write, which is what makes the
// counter-plus-record finalize atomic for this backend.
type Persistence struct {
	root          string
	mu            sync.Mutex
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates file persistence rooted at the given directory.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	fp := &Persistence{root: cleanRoot}
	fp.workflowRepo = &WorkflowRepository{root: cleanRoot, mu: &fp.mu}
	fp.executionRepo = &ExecutionRepository{root: cleanRoot, mu: &fp.mu, workflows: fp.workflowRepo}

	for _, dir := range []string{workflowsDir(cleanRoot), executionsDir(cleanRoot)} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}

	return fp, nil
}

func workflowsDir(root string) string {
	return root + "/workflows"
}

func executionsDir(root string) string {
	return root + "/executions"
}

func (fp *Persistence) Workflows() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) Executions() persistence.ExecutionRepository {
	return fp.executionRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence,
// there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}
