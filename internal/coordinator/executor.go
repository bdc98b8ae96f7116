package coordinator

import (
	"context"
	"fmt"

	"github.com/swarmlab/convene/pkg/models"
)

// StepExecutor performs one workflow step with the assigned agent and
// returns the step's output map. Implementations should honor the
// context's deadline. Step implementations must not mutate coordinator
// or agent state; they only return outputs.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, step models.Step, agent *models.Agent, execCtx ExecutionContext) (map[string]any, error)
}

// StepExecutorFunc adapts a function to the StepExecutor interface.
type StepExecutorFunc func(ctx context.Context, step models.Step, agent *models.Agent, execCtx ExecutionContext) (map[string]any, error)

// ExecuteStep calls f.
func (f StepExecutorFunc) ExecuteStep(ctx context.Context, step models.Step, agent *models.Agent, execCtx ExecutionContext) (map[string]any, error) {
	return f(ctx, step, agent, execCtx)
}

// StubExecutor is the default executor. It produces a single
// "<role>_<action>: completed" entry per step, which is enough to
// exercise workflows end to end without real agent invocation.
type StubExecutor struct{}

// NewStubExecutor creates a StubExecutor.
func NewStubExecutor() *StubExecutor {
	return &StubExecutor{}
}

// ExecuteStep returns the placeholder output for the step.
func (s *StubExecutor) ExecuteStep(ctx context.Context, step models.Step, agent *models.Agent, execCtx ExecutionContext) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return map[string]any{
		fmt.Sprintf("%s_%s", step.Role, step.Action): "completed",
	}, nil
}
