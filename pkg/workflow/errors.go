package workflow

import (
	"errors"

	"github.com/autoflowhq/autoflow/pkg/models"
)

// RunError carries the error kind a run or action failure is classified
// under. Unwrapped errors default to ACTION_EXECUTION_ERROR.
type RunError struct {
	Kind models.ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	return e.Err.Error()
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newConfigurationError(err error) *RunError {
	return &RunError{Kind: models.ErrorKindConfiguration, Err: err}
}

func newTimeoutError(err error) *RunError {
	return &RunError{Kind: models.ErrorKindTimeout, Err: err}
}

// classify returns the error kind an arbitrary error maps to.
func classify(err error) models.ErrorKind {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind
	}

	return models.ErrorKindActionExecution
}
