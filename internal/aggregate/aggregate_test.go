package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/swarmlab/convene/pkg/models"
)

func output(agentID string, confidence float64, kv map[string]any) *models.AgentOutput {
	return &models.AgentOutput{
		AgentID:    agentID,
		Output:     kv,
		Confidence: confidence,
		Timestamp:  time.Now(),
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateEmptyInput(t *testing.T) {
	a := New()
	result, err := a.Aggregate(nil, StrategyMerge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Outputs) != 0 {
		t.Errorf("expected empty outputs, got %v", result.Outputs)
	}
	if result.Confidence != 0 {
		t.Errorf("expected confidence 0, got %f", result.Confidence)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", result.Conflicts)
	}
	if result.StrategyUsed != "merge" {
		t.Errorf("expected strategy merge, got %s", result.StrategyUsed)
	}
}

func TestAggregateDiscardsInvalidOutputs(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.9, nil),                          // empty map
		output("a2", 1.5, map[string]any{"x": 1}),       // confidence out of range
		output("a3", -0.1, map[string]any{"x": 1}),      // confidence out of range
	}

	result, err := a.Aggregate(outputs, StrategyMerge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Outputs) != 0 || result.Confidence != 0 {
		t.Errorf("expected empty sentinel when all outputs invalid, got %+v", result)
	}
}

func TestAggregateUnknownStrategy(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{output("a1", 0.9, map[string]any{"x": 1})}
	if _, err := a.Aggregate(outputs, Strategy("guess")); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestMergeLastWriteWinsWithConflict(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.9, map[string]any{"a": 1, "b": 2}),
		output("a2", 0.6, map[string]any{"a": 1, "b": 3}),
	}

	result, err := a.Aggregate(outputs, StrategyMerge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Outputs["a"] != 1 || result.Outputs["b"] != 3 {
		t.Errorf("expected {a:1, b:3}, got %v", result.Outputs)
	}
	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.Key != "b" {
		t.Errorf("expected conflict on b, got %s", c.Key)
	}
	if c.Values[0] != 2 || c.Values[1] != 3 {
		t.Errorf("expected values [2 3], got %v", c.Values)
	}
	if c.Agents[0] != "a1" || c.Agents[1] != "a2" {
		t.Errorf("expected agents [a1 a2], got %v", c.Agents)
	}
	if !almostEqual(result.Confidence, 0.75) {
		t.Errorf("expected confidence 0.75, got %f", result.Confidence)
	}
}

func TestMergeNoConflictOnEqualValues(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 1.0, map[string]any{"x": "same"}),
		output("a2", 1.0, map[string]any{"x": "same"}),
	}

	result, err := a.Aggregate(outputs, StrategyMerge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("equal values must not conflict, got %v", result.Conflicts)
	}
}

func TestVoteMajorityWins(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.8, map[string]any{"x": "X"}),
		output("a2", 0.8, map[string]any{"x": "X"}),
		output("a3", 0.8, map[string]any{"x": "X"}),
		output("a4", 0.8, map[string]any{"x": "Y"}),
	}

	result, err := a.Aggregate(outputs, StrategyVote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["x"] != "X" {
		t.Errorf("expected X to win, got %v", result.Outputs["x"])
	}
	if !almostEqual(result.Confidence, 0.75) {
		t.Errorf("expected confidence 0.75, got %f", result.Confidence)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("expected no conflicts on clear majority, got %v", result.Conflicts)
	}
}

func TestVoteTieRecordsConflict(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.8, map[string]any{"x": "X"}),
		output("a2", 0.8, map[string]any{"x": "Y"}),
	}

	result, err := a.Aggregate(outputs, StrategyVote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(result.Conflicts))
	}
	c := result.Conflicts[0]
	if c.Values[0] != "X" || c.Values[1] != "Y" {
		t.Errorf("expected candidates [X Y], got %v", c.Values)
	}
	if c.Votes[0] != 1 || c.Votes[1] != 1 {
		t.Errorf("expected votes [1 1], got %v", c.Votes)
	}
	// First-seen candidate wins the tie.
	if result.Outputs["x"] != "X" {
		t.Errorf("expected first-seen X to win tie, got %v", result.Outputs["x"])
	}
	if !almostEqual(result.Confidence, 0.5) {
		t.Errorf("expected confidence 0.5, got %f", result.Confidence)
	}
}

func TestConsensusRemovesDisagreements(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.9, map[string]any{"k1": "v1", "k2": "v2"}),
		output("a2", 0.8, map[string]any{"k1": "v1", "k2": "other"}),
	}

	result, err := a.Aggregate(outputs, StrategyConsensus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := result.Outputs["k2"]; ok {
		t.Error("disputed key k2 should be removed from consensus")
	}
	if result.Outputs["k1"] != "v1" {
		t.Errorf("agreed key k1 should survive, got %v", result.Outputs)
	}
	if len(result.Conflicts) != 1 || result.Conflicts[0].Key != "k2" {
		t.Errorf("expected one conflict on k2, got %v", result.Conflicts)
	}
	// One surviving key out of two seen.
	if !almostEqual(result.Confidence, 0.5) {
		t.Errorf("expected confidence 0.5, got %f", result.Confidence)
	}
}

func TestConsensusRecordsOnlyFirstDisagreement(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.9, map[string]any{"k": "v1"}),
		output("a2", 0.8, map[string]any{"k": "v2"}),
		output("a3", 0.7, map[string]any{"k": "v3"}),
	}

	result, err := a.Aggregate(outputs, StrategyConsensus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Conflicts) != 1 {
		t.Errorf("only the first disagreement per key is recorded, got %d", len(result.Conflicts))
	}
}

func TestWeightedPicksMostConfidentPerKey(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.4, map[string]any{"x": "low", "y": "only"}),
		output("a2", 0.9, map[string]any{"x": "high"}),
	}

	result, err := a.Aggregate(outputs, StrategyWeighted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["x"] != "high" {
		t.Errorf("expected value from most confident output, got %v", result.Outputs["x"])
	}
	if result.Outputs["y"] != "only" {
		t.Errorf("expected sole producer's value for y, got %v", result.Outputs["y"])
	}
	// Mean over all contributing outputs, not just winners.
	if !almostEqual(result.Confidence, 0.65) {
		t.Errorf("expected confidence 0.65, got %f", result.Confidence)
	}
}

func TestWeightedTieGoesToFirstSeen(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.7, map[string]any{"x": "first"}),
		output("a2", 0.7, map[string]any{"x": "second"}),
	}

	result, err := a.Aggregate(outputs, StrategyWeighted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["x"] != "first" {
		t.Errorf("expected first-seen winner on tie, got %v", result.Outputs["x"])
	}
}

func TestBestPicksHighestConfidenceVerbatim(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.5, map[string]any{"x": 1}),
		output("a2", 0.95, map[string]any{"y": 2}),
		output("a3", 0.7, map[string]any{"z": 3}),
	}

	result, err := a.Aggregate(outputs, StrategyBest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Outputs) != 1 || result.Outputs["y"] != 2 {
		t.Errorf("expected a2's map verbatim, got %v", result.Outputs)
	}
	if !almostEqual(result.Confidence, 0.95) {
		t.Errorf("expected confidence 0.95, got %f", result.Confidence)
	}
	if result.Metadata["selected_agent"] != "a2" {
		t.Errorf("expected selected_agent a2, got %v", result.Metadata["selected_agent"])
	}
	if len(result.ContributingAgents) != 1 || result.ContributingAgents[0] != "a2" {
		t.Errorf("expected only a2 contributing, got %v", result.ContributingAgents)
	}
}

func TestSequentialOverwritesWithoutConflicts(t *testing.T) {
	a := New()
	outputs := []*models.AgentOutput{
		output("a1", 0.6, map[string]any{"x": 1, "y": 1}),
		output("a2", 0.8, map[string]any{"x": 2}),
	}

	result, err := a.Aggregate(outputs, StrategySequential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outputs["x"] != 2 || result.Outputs["y"] != 1 {
		t.Errorf("expected pipeline overwrite {x:2, y:1}, got %v", result.Outputs)
	}
	if len(result.Conflicts) != 0 {
		t.Errorf("sequential records no conflicts, got %v", result.Conflicts)
	}
	if !almostEqual(result.Confidence, 0.7) {
		t.Errorf("expected confidence 0.7, got %f", result.Confidence)
	}
}
