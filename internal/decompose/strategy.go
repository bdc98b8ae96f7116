package decompose

import "github.com/swarmlab/convene/pkg/models"

// phase is one step in a type-specific decomposition sequence.
type phase struct {
	id           string
	title        string
	capabilities []string
	effort       int
}

// strategy is the fixed phase sequence for one task type.
type strategy struct {
	taskType models.TaskType
	priority models.TaskPriority
	phases   []phase
}

// strategyFor returns the decomposition strategy for the given task
// type. The switch is exhaustive over the known types; adding a type
// means adding a case here.
func strategyFor(t models.TaskType) (strategy, bool) {
	switch t {
	case models.TaskTypeDevelopment:
		return strategy{
			taskType: t,
			priority: models.PriorityHigh,
			phases: []phase{
				{"design", "Design component architecture", []string{"architecture", "design"}, 3},
				{"implement", "Implement core functionality", []string{"coding", "development"}, 5},
				{"test", "Write and execute tests", []string{"testing", "qa"}, 3},
				{"integrate", "Integrate with existing system", []string{"integration", "development"}, 2},
				{"document", "Write documentation", []string{"documentation", "writing"}, 2},
			},
		}, true
	case models.TaskTypeResearch:
		return strategy{
			taskType: t,
			priority: models.PriorityMedium,
			phases: []phase{
				{"survey", "Literature survey", []string{"research", "analysis"}, 2},
				{"collect", "Data collection", []string{"research", "data"}, 3},
				{"analyze", "Data analysis", []string{"analysis", "statistics"}, 4},
				{"synthesize", "Synthesize findings", []string{"research", "writing"}, 2},
				{"report", "Write research report", []string{"documentation", "writing"}, 3},
			},
		}, true
	case models.TaskTypeAnalysis:
		return strategy{
			taskType: t,
			priority: models.PriorityMedium,
			phases: []phase{
				{"scope", "Define analysis scope", []string{"analysis", "planning"}, 2},
				{"gather", "Gather data", []string{"research", "data"}, 3},
				{"process", "Process and clean data", []string{"data", "analysis"}, 3},
				{"analyze", "Perform analysis", []string{"analysis", "statistics"}, 4},
				{"visualize", "Create visualizations", []string{"visualization", "data"}, 2},
				{"report", "Write analysis report", []string{"documentation", "writing"}, 2},
			},
		}, true
	case models.TaskTypeTesting:
		return strategy{
			taskType: t,
			priority: models.PriorityHigh,
			phases: []phase{
				{"plan", "Create test plan", []string{"testing", "planning"}, 2},
				{"unit", "Write unit tests", []string{"testing", "coding"}, 3},
				{"integration", "Write integration tests", []string{"testing", "coding"}, 3},
				{"e2e", "Write end-to-end tests", []string{"testing", "qa"}, 2},
				{"execute", "Execute test suite", []string{"testing", "qa"}, 2},
				{"report", "Generate test report", []string{"documentation", "testing"}, 1},
			},
		}, true
	case models.TaskTypeDocumentation:
		return strategy{
			taskType: t,
			priority: models.PriorityMedium,
			phases: []phase{
				{"outline", "Create documentation outline", []string{"documentation", "planning"}, 1},
				{"draft", "Write first draft", []string{"documentation", "writing"}, 3},
				{"review", "Review and refine", []string{"documentation", "editing"}, 2},
				{"examples", "Add code examples", []string{"documentation", "coding"}, 2},
				{"finalize", "Finalize documentation", []string{"documentation", "writing"}, 1},
			},
		}, true
	case models.TaskTypeArchitecture:
		return strategy{
			taskType: t,
			priority: models.PriorityCritical,
			phases: []phase{
				{"requirements", "Gather requirements", []string{"architecture", "analysis"}, 2},
				{"design", "Design system architecture", []string{"architecture", "design"}, 4},
				{"document", "Document architecture", []string{"documentation", "architecture"}, 3},
				{"review", "Architecture review", []string{"architecture", "review"}, 2},
				{"refine", "Refine based on feedback", []string{"architecture", "design"}, 2},
			},
		}, true
	default:
		return strategy{}, false
	}
}
