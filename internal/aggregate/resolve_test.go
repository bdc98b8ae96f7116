package aggregate

import (
	"testing"

	"github.com/swarmlab/convene/pkg/models"
)

func TestResolveConflictsUnknownStrategy(t *testing.T) {
	a := New()
	if _, err := a.ResolveConflicts(nil, ResolutionStrategy("coinflip")); err == nil {
		t.Fatal("expected error for unknown resolution strategy")
	}
}

func TestResolveConflictsMajority(t *testing.T) {
	a := New()
	conflicts := []models.Conflict{
		{Key: "x", Values: []any{"A", "B"}, Votes: []int{2, 5}},
	}

	resolved, err := a.ResolveConflicts(conflicts, ResolveMajority)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["x"] != "B" {
		t.Errorf("expected B with 5 votes, got %v", resolved["x"])
	}
}

func TestResolveConflictsMajorityFallsBackToFirst(t *testing.T) {
	a := New()
	conflicts := []models.Conflict{
		{Key: "x", Values: []any{"A", "B"}},
	}

	resolved, err := a.ResolveConflicts(conflicts, ResolveMajority)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["x"] != "A" {
		t.Errorf("expected first candidate without vote counts, got %v", resolved["x"])
	}
}

func TestResolveConflictsConfidence(t *testing.T) {
	a := New()
	conflicts := []models.Conflict{
		{Key: "x", Values: []any{"A", "B"}, Confidences: []float64{0.6, 0.9}},
	}

	resolved, err := a.ResolveConflicts(conflicts, ResolveConfidence)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["x"] != "B" {
		t.Errorf("expected more confident candidate, got %v", resolved["x"])
	}
}

func TestResolveConflictsWeightedConfidenceBreaksVoteTie(t *testing.T) {
	a := New()
	conflicts := []models.Conflict{
		{
			Key:         "x",
			Values:      []any{"A", "B"},
			Votes:       []int{3, 3},
			Confidences: []float64{0.5, 0.8},
		},
	}

	resolved, err := a.ResolveConflicts(conflicts, ResolveWeighted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["x"] != "B" {
		t.Errorf("expected confidence to break vote tie, got %v", resolved["x"])
	}
}

func TestResolveConflictsSkipsEmptyAndLaterWins(t *testing.T) {
	a := New()
	conflicts := []models.Conflict{
		{Key: "empty"},
		{Key: "x", Values: []any{"old"}},
		{Key: "x", Values: []any{"new"}},
	}

	resolved, err := a.ResolveConflicts(conflicts, ResolveMajority)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resolved["empty"]; ok {
		t.Error("conflict without candidates should be skipped")
	}
	if resolved["x"] != "new" {
		t.Errorf("expected later conflict on same key to win, got %v", resolved["x"])
	}
}
