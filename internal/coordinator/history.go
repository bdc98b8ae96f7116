package coordinator

import (
	"context"

	"github.com/swarmlab/convene/pkg/models"
)

// HistorySink receives every finished assembly result, in completion
// order. Implementations may persist them; a sink failure is logged and
// never fails the run.
type HistorySink interface {
	Append(ctx context.Context, result *models.AssemblyResult) error
}

// appendHistory records a finished result in the in-memory ring and
// forwards it to the external sink, if any.
func (c *Coordinator) appendHistory(ctx context.Context, result *models.AssemblyResult) {
	c.mu.Lock()
	c.history = append(c.history, result)
	if c.historyLimit > 0 && len(c.history) > c.historyLimit {
		// Drop oldest entries; copy so the backing array doesn't pin them.
		trimmed := make([]*models.AssemblyResult, c.historyLimit)
		copy(trimmed, c.history[len(c.history)-c.historyLimit:])
		c.history = trimmed
	}
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		if err := sink.Append(ctx, result); err != nil {
			debugLog("history sink append failed for task %s: %v", result.TaskID, err)
		}
	}
}

// ExecutionHistory returns a read-only snapshot of finished runs, oldest
// first.
func (c *Coordinator) ExecutionHistory() []*models.AssemblyResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*models.AssemblyResult, len(c.history))
	copy(out, c.history)
	return out
}
