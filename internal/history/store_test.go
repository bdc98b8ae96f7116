package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/swarmlab/convene/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(taskID string, status models.ExecutionStatus) *models.AssemblyResult {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.AssemblyResult{
		AssemblyName: "review",
		TaskID:       taskID,
		Status:       status,
		Outputs:      map[string]any{"summary": "looks good"},
		Contributions: map[string]*models.Contribution{
			"a1": {AgentID: "a1", RoleName: "reviewer", QualityScore: 1},
		},
		Duration:    1500 * time.Millisecond,
		Metadata:    map[string]any{"num_steps": float64(2)},
		StartedAt:   now.Add(-2 * time.Second),
		CompletedAt: now,
	}
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		if err := store.Append(ctx, sampleResult(id, models.StatusCompleted)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 results, got %d", len(recent))
	}
	if recent[0].TaskID != "t3" || recent[1].TaskID != "t2" {
		t.Errorf("expected most recent first, got [%s %s]", recent[0].TaskID, recent[1].TaskID)
	}

	got := recent[0]
	if got.Status != models.StatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.Outputs["summary"] != "looks good" {
		t.Errorf("expected outputs round-trip, got %v", got.Outputs)
	}
	if got.Contributions["a1"] == nil || got.Contributions["a1"].RoleName != "reviewer" {
		t.Errorf("expected contributions round-trip, got %v", got.Contributions)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("expected duration 1.5s, got %s", got.Duration)
	}
}

func TestByTask(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Append(ctx, sampleResult("t1", models.StatusFailed)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, sampleResult("t1", models.StatusCompleted)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, sampleResult("other", models.StatusCompleted)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	runs, err := store.ByTask(ctx, "t1")
	if err != nil {
		t.Fatalf("ByTask: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs for t1, got %d", len(runs))
	}
	if runs[0].Status != models.StatusFailed || runs[1].Status != models.StatusCompleted {
		t.Errorf("expected oldest first, got [%s %s]", runs[0].Status, runs[1].Status)
	}
}

func TestCount(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}

	if err := store.Append(ctx, sampleResult("t1", models.StatusCancelled)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	n, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 run, got %d", n)
	}
}
