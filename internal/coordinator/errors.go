package coordinator

import (
	"errors"
	"fmt"

	"github.com/swarmlab/convene/pkg/models"
)

var (
	// ErrNilAssembly indicates ExecuteAssembly was called without an assembly.
	ErrNilAssembly = errors.New("assembly is nil")
	// ErrNoRoles indicates an assembly template declares no roles.
	ErrNoRoles = errors.New("assembly has no roles")
)

// StepError records a workflow step failure, including how many attempts
// were made under the retry policy.
type StepError struct {
	// Step is the failing step descriptor.
	Step models.Step
	// Attempts is the number of execution attempts made.
	Attempts int
	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("step %s/%s failed after %d attempts: %v", e.Step.Role, e.Step.Action, e.Attempts, e.Err)
	}
	return fmt.Sprintf("step %s/%s failed: %v", e.Step.Role, e.Step.Action, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
