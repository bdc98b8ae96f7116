// Package decompose breaks high-level tasks into dependency graphs of
// subtasks with a feasible execution order and an approximate critical path.
package decompose

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/swarmlab/convene/pkg/models"
)

// Decomposer turns a task description and type into a set of subtasks
// with dependency edges. Task ids are unique within one Decomposer's
// lifetime: a monotonic counter shared across all decompositions, never
// reset. Decompose is safe for concurrent use.
type Decomposer struct {
	counter atomic.Int64
}

// New creates a new Decomposer.
func New() *Decomposer {
	return &Decomposer{}
}

// Decompose breaks the described task into subtasks using the strategy
// for the given type. Unknown types fall back to a single task wrapping
// the whole description. The context map is available to strategies for
// future use and may be nil.
func (d *Decomposer) Decompose(description string, taskType models.TaskType, context map[string]any) (*models.DecompositionResult, error) {
	strat, ok := strategyFor(taskType)
	if !ok {
		return d.defaultDecomposition(description, taskType), nil
	}

	subtasks := d.applyStrategy(strat, description)

	order, err := BuildExecutionOrder(subtasks)
	if err != nil {
		return nil, fmt.Errorf("build execution order: %w", err)
	}

	totalEffort := 0
	for _, t := range subtasks {
		totalEffort += t.EstimatedEffort
	}

	return &models.DecompositionResult{
		OriginalTask:         description,
		Subtasks:             subtasks,
		ExecutionOrder:       order,
		EstimatedTotalEffort: totalEffort,
		CriticalPath:         CriticalPath(subtasks, order),
	}, nil
}

// applyStrategy instantiates the strategy's phase sequence as tasks.
// Each phase gets exactly one blocks dependency on the previous phase's
// task, forming a linear chain.
func (d *Decomposer) applyStrategy(strat strategy, description string) []*models.Task {
	tasks := make([]*models.Task, 0, len(strat.phases))

	var prevID string
	for _, p := range strat.phases {
		id := d.generateTaskID(p.id)

		var deps []models.Dependency
		if prevID != "" {
			deps = []models.Dependency{{TaskID: prevID, Type: models.DependencyBlocks}}
		}

		tasks = append(tasks, &models.Task{
			ID:                   id,
			Title:                fmt.Sprintf("%s: %s", p.title, description),
			Description:          fmt.Sprintf("%s for: %s", p.title, description),
			Type:                 strat.taskType,
			Priority:             strat.priority,
			EstimatedEffort:      p.effort,
			RequiredCapabilities: p.capabilities,
			Dependencies:         deps,
			AcceptanceCriteria:   []string{"Complete " + strings.ToLower(p.title)},
			Metadata:             map[string]string{"phase": p.id},
		})
		prevID = id
	}

	return tasks
}

// defaultDecomposition wraps the whole description in a single task.
func (d *Decomposer) defaultDecomposition(description string, taskType models.TaskType) *models.DecompositionResult {
	task := &models.Task{
		ID:                   d.generateTaskID("default"),
		Title:                description,
		Description:          description,
		Type:                 taskType,
		Priority:             models.PriorityMedium,
		EstimatedEffort:      5,
		RequiredCapabilities: []string{"general"},
		AcceptanceCriteria:   []string{"Complete task"},
	}

	return &models.DecompositionResult{
		OriginalTask:         description,
		Subtasks:             []*models.Task{task},
		ExecutionOrder:       [][]string{{task.ID}},
		EstimatedTotalEffort: task.EstimatedEffort,
		CriticalPath:         []string{task.ID},
	}
}

// generateTaskID returns prefix_NNNN with a zero-padded monotonic
// counter. Counter values are never reused within a Decomposer.
func (d *Decomposer) generateTaskID(prefix string) string {
	return fmt.Sprintf("%s_%04d", prefix, d.counter.Add(1))
}
