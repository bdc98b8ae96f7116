package decompose

import (
	"fmt"
	"strings"

	"github.com/swarmlab/convene/pkg/models"
)

// PlanningError indicates the dependency graph cannot be scheduled:
// a batching iteration produced no ready tasks while tasks remain,
// which means the graph is cyclic or references unsatisfiable
// dependencies.
type PlanningError struct {
	// Remaining lists the ids of tasks that could not be scheduled.
	Remaining []string
}

// Error implements the error interface.
func (e *PlanningError) Error() string {
	return fmt.Sprintf("cannot determine execution order: %d tasks unschedulable (cyclic or unsatisfiable dependencies): %s",
		len(e.Remaining), strings.Join(e.Remaining, ", "))
}

// BuildExecutionOrder partitions tasks into batches such that every
// blocks-type dependency of a task appears in a strictly earlier batch.
// Tasks within a batch have no ordering constraints between them.
// Returns a PlanningError instead of looping forever when the graph is
// cyclic or unsatisfiable.
func BuildExecutionOrder(tasks []*models.Task) ([][]string, error) {
	completed := make(map[string]bool, len(tasks))
	var order [][]string

	for len(completed) < len(tasks) {
		var batch []string
		for _, t := range tasks {
			if !completed[t.ID] && t.IsReady(completed) {
				batch = append(batch, t.ID)
			}
		}

		if len(batch) == 0 {
			var remaining []string
			for _, t := range tasks {
				if !completed[t.ID] {
					remaining = append(remaining, t.ID)
				}
			}
			return nil, &PlanningError{Remaining: remaining}
		}

		order = append(order, batch)
		for _, id := range batch {
			completed[id] = true
		}
	}

	return order, nil
}

// CriticalPath selects, for each batch, the task with the highest effort
// estimate (ties broken by first-seen order in the batch) and returns
// their ids. This is a per-batch-maximum approximation rather than a
// longest-cumulative-path computation; batch boundaries already encode
// the dependency structure.
func CriticalPath(tasks []*models.Task, executionOrder [][]string) []string {
	byID := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var path []string
	for _, batch := range executionOrder {
		var longest *models.Task
		for _, id := range batch {
			t, ok := byID[id]
			if !ok {
				continue
			}
			if longest == nil || t.EstimatedEffort > longest.EstimatedEffort {
				longest = t
			}
		}
		if longest != nil {
			path = append(path, longest.ID)
		}
	}

	return path
}
