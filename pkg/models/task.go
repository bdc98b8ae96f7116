package models

// TaskType classifies a task for decomposition strategy selection.
type TaskType string

const (
	// TaskTypeDevelopment is a software development task.
	TaskTypeDevelopment TaskType = "development"
	// TaskTypeResearch is a research task.
	TaskTypeResearch TaskType = "research"
	// TaskTypeAnalysis is a data or systems analysis task.
	TaskTypeAnalysis TaskType = "analysis"
	// TaskTypeTesting is a testing task.
	TaskTypeTesting TaskType = "testing"
	// TaskTypeDocumentation is a documentation task.
	TaskTypeDocumentation TaskType = "documentation"
	// TaskTypeArchitecture is an architecture design task.
	TaskTypeArchitecture TaskType = "architecture"
)

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeDevelopment, TaskTypeResearch, TaskTypeAnalysis,
		TaskTypeTesting, TaskTypeDocumentation, TaskTypeArchitecture:
		return true
	default:
		return false
	}
}

// TaskPriority represents the priority level of a task.
type TaskPriority string

const (
	// PriorityCritical is the highest priority.
	PriorityCritical TaskPriority = "critical"
	// PriorityHigh is above-normal priority.
	PriorityHigh TaskPriority = "high"
	// PriorityMedium is normal priority.
	PriorityMedium TaskPriority = "medium"
	// PriorityLow is the lowest priority.
	PriorityLow TaskPriority = "low"
)

// DependencyType describes how one task relates to another.
type DependencyType string

const (
	// DependencyBlocks means the dependency must complete before this task may start.
	DependencyBlocks DependencyType = "blocks"
	// DependencyRequires is an informational requirement; it does not gate readiness.
	DependencyRequires DependencyType = "requires"
	// DependencySuggests is an informational suggestion; it does not gate readiness.
	DependencySuggests DependencyType = "suggests"
)

// Dependency is an edge from a task to another task it depends on.
type Dependency struct {
	// TaskID is the ID of the task this task depends on.
	TaskID string `json:"task_id"`
	// Type is the kind of dependency.
	Type DependencyType `json:"type"`
}

// Task is a single decomposed unit of work. Tasks are immutable once
// produced by decomposition.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed information about the task.
	Description string `json:"description,omitempty"`
	// Type classifies the task.
	Type TaskType `json:"type"`
	// Priority is the priority level of the task.
	Priority TaskPriority `json:"priority"`
	// EstimatedEffort is the effort estimate in story points.
	EstimatedEffort int `json:"estimated_effort"`
	// RequiredCapabilities lists capabilities needed to perform the task.
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`
	// Dependencies lists edges to tasks this task depends on.
	Dependencies []Dependency `json:"dependencies,omitempty"`
	// AcceptanceCriteria defines what it means for the task to be complete.
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	// Metadata holds arbitrary key/value annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IsReady returns true if every blocks-type dependency of the task is
// present in completed. Requires and suggests dependencies never gate
// readiness.
func (t *Task) IsReady(completed map[string]bool) bool {
	for _, dep := range t.Dependencies {
		if dep.Type == DependencyBlocks && !completed[dep.TaskID] {
			return false
		}
	}
	return true
}

// DecompositionResult is a task broken into a dependency graph, batched
// into a feasible execution order, with an approximate critical path.
type DecompositionResult struct {
	// OriginalTask is the description the decomposition started from.
	OriginalTask string `json:"original_task"`
	// Subtasks are the decomposed tasks.
	Subtasks []*Task `json:"subtasks"`
	// ExecutionOrder is a list of batches; tasks within a batch may run in parallel.
	ExecutionOrder [][]string `json:"execution_order"`
	// EstimatedTotalEffort is the sum of all subtask efforts.
	EstimatedTotalEffort int `json:"estimated_total_effort"`
	// CriticalPath holds one task id per batch, the batch's highest-effort task.
	CriticalPath []string `json:"critical_path"`
}
