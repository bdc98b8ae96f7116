// Package aggregate reconciles multiple agents' outputs for the same
// logical task into one result under a selectable strategy, detecting
// and recording disagreements.
package aggregate

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/swarmlab/convene/pkg/models"
)

// Strategy selects the policy for reconciling agent outputs.
type Strategy string

const (
	// StrategyMerge combines all outputs, last write wins, conflicts recorded.
	StrategyMerge Strategy = "merge"
	// StrategyVote picks the majority value per key.
	StrategyVote Strategy = "vote"
	// StrategyConsensus keeps only keys every agent agrees on.
	StrategyConsensus Strategy = "consensus"
	// StrategyWeighted picks each key's value from the most confident producer.
	StrategyWeighted Strategy = "weighted"
	// StrategyBest takes the single highest-confidence output verbatim.
	StrategyBest Strategy = "best"
	// StrategySequential applies outputs as an ordered overwrite pipeline.
	StrategySequential Strategy = "sequential"
)

// Valid returns true if the strategy is a known value.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyMerge, StrategyVote, StrategyConsensus,
		StrategyWeighted, StrategyBest, StrategySequential:
		return true
	default:
		return false
	}
}

// Aggregator combines per-agent outputs into a single reconciled result.
// It is stateless and safe for concurrent use.
type Aggregator struct{}

// New creates a new Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate discards invalid outputs (empty map or confidence outside
// [0,1]) and dispatches to the named strategy. When no valid outputs
// remain it returns an empty result with confidence zero and no error.
// An unknown strategy is an error.
func (a *Aggregator) Aggregate(outputs []*models.AgentOutput, strategy Strategy) (*models.AggregatedResult, error) {
	valid := make([]*models.AgentOutput, 0, len(outputs))
	for _, out := range outputs {
		if out != nil && out.Valid() {
			valid = append(valid, out)
		}
	}

	if len(valid) == 0 {
		return emptyResult(strategy), nil
	}

	switch strategy {
	case StrategyMerge:
		return mergeStrategy(valid), nil
	case StrategyVote:
		return voteStrategy(valid), nil
	case StrategyConsensus:
		return consensusStrategy(valid), nil
	case StrategyWeighted:
		return weightedStrategy(valid), nil
	case StrategyBest:
		return bestStrategy(valid), nil
	case StrategySequential:
		return sequentialStrategy(valid), nil
	default:
		return nil, fmt.Errorf("unknown aggregation strategy: %q", strategy)
	}
}

// emptyResult is the well-defined sentinel for aggregation with no
// valid inputs.
func emptyResult(strategy Strategy) *models.AggregatedResult {
	return &models.AggregatedResult{
		Outputs:      map[string]any{},
		Confidence:   0,
		StrategyUsed: string(strategy),
		Metadata:     map[string]any{},
	}
}

// sortedKeys returns the keys of m in lexical order. Output maps have
// no inherent order in Go, so keys within one output are processed
// sorted to keep conflict records deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valuesEqual reports whether two output values are the same.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// meanConfidence returns the arithmetic mean of the outputs' confidences.
func meanConfidence(outputs []*models.AgentOutput) float64 {
	if len(outputs) == 0 {
		return 0
	}
	sum := 0.0
	for _, out := range outputs {
		sum += out.Confidence
	}
	return clamp01(sum / float64(len(outputs)))
}

// agentIDs returns the agent ids of the outputs, in input order.
func agentIDs(outputs []*models.AgentOutput) []string {
	ids := make([]string, len(outputs))
	for i, out := range outputs {
		ids[i] = out.AgentID
	}
	return ids
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
