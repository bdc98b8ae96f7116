package decompose

import (
	"strings"
	"testing"

	"github.com/swarmlab/convene/pkg/models"
)

func TestDecomposeDevelopment(t *testing.T) {
	d := New()
	result, err := d.Decompose("build auth service", models.TaskTypeDevelopment, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Subtasks) != 5 {
		t.Fatalf("expected 5 subtasks, got %d", len(result.Subtasks))
	}

	// Linear chain: five single-task batches.
	if len(result.ExecutionOrder) != 5 {
		t.Errorf("expected 5 batches, got %d", len(result.ExecutionOrder))
	}
	for i, batch := range result.ExecutionOrder {
		if len(batch) != 1 {
			t.Errorf("batch %d: expected 1 task, got %d", i, len(batch))
		}
	}

	// Total effort for development phases is 3+5+3+2+2.
	if result.EstimatedTotalEffort != 15 {
		t.Errorf("expected total effort 15, got %d", result.EstimatedTotalEffort)
	}

	// Each phase after the first has exactly one blocks dependency on
	// the previous phase's actual id.
	for i, task := range result.Subtasks {
		if i == 0 {
			if len(task.Dependencies) != 0 {
				t.Errorf("first phase should have no dependencies, got %v", task.Dependencies)
			}
			continue
		}
		if len(task.Dependencies) != 1 {
			t.Fatalf("phase %d: expected 1 dependency, got %d", i, len(task.Dependencies))
		}
		dep := task.Dependencies[0]
		if dep.Type != models.DependencyBlocks {
			t.Errorf("phase %d: expected blocks dependency, got %s", i, dep.Type)
		}
		if dep.TaskID != result.Subtasks[i-1].ID {
			t.Errorf("phase %d: dependency %s does not match previous task %s",
				i, dep.TaskID, result.Subtasks[i-1].ID)
		}
	}

	// Singleton batches mean the critical path visits every task.
	if len(result.CriticalPath) != 5 {
		t.Errorf("expected critical path of 5, got %d", len(result.CriticalPath))
	}
}

func TestDecomposeAllKnownTypes(t *testing.T) {
	tests := []struct {
		taskType  models.TaskType
		wantTasks int
		wantFirst string
	}{
		{models.TaskTypeDevelopment, 5, "design"},
		{models.TaskTypeResearch, 5, "survey"},
		{models.TaskTypeAnalysis, 6, "scope"},
		{models.TaskTypeTesting, 6, "plan"},
		{models.TaskTypeDocumentation, 5, "outline"},
		{models.TaskTypeArchitecture, 5, "requirements"},
	}

	for _, tt := range tests {
		t.Run(string(tt.taskType), func(t *testing.T) {
			d := New()
			result, err := d.Decompose("some work", tt.taskType, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Subtasks) != tt.wantTasks {
				t.Errorf("expected %d subtasks, got %d", tt.wantTasks, len(result.Subtasks))
			}
			first := result.Subtasks[0]
			if !strings.HasPrefix(first.ID, tt.wantFirst+"_") {
				t.Errorf("expected first id with prefix %q, got %q", tt.wantFirst, first.ID)
			}
			if first.Metadata["phase"] != tt.wantFirst {
				t.Errorf("expected phase metadata %q, got %q", tt.wantFirst, first.Metadata["phase"])
			}
		})
	}
}

func TestDecomposeUnknownTypeFallsBack(t *testing.T) {
	d := New()
	result, err := d.Decompose("mystery work", models.TaskType("juggling"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Subtasks) != 1 {
		t.Fatalf("expected single fallback task, got %d", len(result.Subtasks))
	}
	task := result.Subtasks[0]
	if !strings.HasPrefix(task.ID, "default_") {
		t.Errorf("expected default_ prefix, got %q", task.ID)
	}
	if len(result.ExecutionOrder) != 1 || len(result.ExecutionOrder[0]) != 1 {
		t.Errorf("expected one single-task batch, got %v", result.ExecutionOrder)
	}
	if len(result.CriticalPath) != 1 || result.CriticalPath[0] != task.ID {
		t.Errorf("expected critical path [%s], got %v", task.ID, result.CriticalPath)
	}
}

func TestTaskIDsNeverReused(t *testing.T) {
	d := New()

	first, err := d.Decompose("task one", models.TaskTypeDevelopment, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := d.Decompose("task two", models.TaskTypeDevelopment, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, task := range first.Subtasks {
		seen[task.ID] = true
	}
	for _, task := range second.Subtasks {
		if seen[task.ID] {
			t.Errorf("task id %s reused across decompositions", task.ID)
		}
	}
}

func TestSeparateDecomposersSameShape(t *testing.T) {
	a, err := New().Decompose("same input", models.TaskTypeResearch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := New().Decompose("same input", models.TaskTypeResearch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a.Subtasks) != len(b.Subtasks) {
		t.Fatalf("expected same task count, got %d and %d", len(a.Subtasks), len(b.Subtasks))
	}
	for i := range a.Subtasks {
		if len(a.Subtasks[i].Dependencies) != len(b.Subtasks[i].Dependencies) {
			t.Errorf("task %d: dependency shape differs", i)
		}
		if a.Subtasks[i].EstimatedEffort != b.Subtasks[i].EstimatedEffort {
			t.Errorf("task %d: effort differs", i)
		}
	}
}

func TestGenerateTaskIDFormat(t *testing.T) {
	d := New()
	id := d.generateTaskID("design")
	if id != "design_0001" {
		t.Errorf("expected design_0001, got %q", id)
	}
	id = d.generateTaskID("implement")
	if id != "implement_0002" {
		t.Errorf("expected implement_0002, got %q", id)
	}
}
