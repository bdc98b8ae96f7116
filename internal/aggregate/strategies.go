package aggregate

import (
	"fmt"

	"github.com/swarmlab/convene/pkg/models"
)

// mergeStrategy combines all outputs in input order. When a later value
// differs from the recorded one, a conflict is recorded and the later
// value overwrites (last write wins). Confidence is the mean of all
// valid outputs' confidences.
func mergeStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	merged := make(map[string]any)
	writer := make(map[string]string)
	writerConf := make(map[string]float64)
	var conflicts []models.Conflict

	for _, out := range outputs {
		for _, key := range sortedKeys(out.Output) {
			value := out.Output[key]
			if old, ok := merged[key]; ok && !valuesEqual(old, value) {
				conflicts = append(conflicts, models.Conflict{
					Key:         key,
					Values:      []any{old, value},
					Agents:      []string{writer[key], out.AgentID},
					Confidences: []float64{writerConf[key], out.Confidence},
				})
			}
			merged[key] = value
			writer[key] = out.AgentID
			writerConf[key] = out.Confidence
		}
	}

	return &models.AggregatedResult{
		Outputs:            merged,
		ContributingAgents: agentIDs(outputs),
		Confidence:         meanConfidence(outputs),
		StrategyUsed:       string(StrategyMerge),
		Conflicts:          conflicts,
		Metadata:           map[string]any{"num_outputs": len(outputs)},
	}
}

// voteTally tracks the vote count for one stringified candidate value.
type voteTally struct {
	value string
	count int
}

// voteStrategy tallies stringified values per key across all outputs;
// the value with the highest count wins. When the top two counts for a
// key are equal, a conflict records exactly those two candidates and
// their counts. Overall confidence is the sum of winning counts divided
// by the sum of all counts.
func voteStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	// Candidates kept in first-seen order per key so ties resolve
	// deterministically.
	votes := make(map[string][]*voteTally)
	var keyOrder []string

	for _, out := range outputs {
		for _, key := range sortedKeys(out.Output) {
			valueStr := fmt.Sprintf("%v", out.Output[key])
			tallies, seen := votes[key]
			if !seen {
				keyOrder = append(keyOrder, key)
			}
			found := false
			for _, t := range tallies {
				if t.value == valueStr {
					t.count++
					found = true
					break
				}
			}
			if !found {
				votes[key] = append(tallies, &voteTally{value: valueStr, count: 1})
			}
		}
	}

	result := make(map[string]any, len(keyOrder))
	var conflicts []models.Conflict
	totalVotes := 0
	winningVotes := 0

	for _, key := range keyOrder {
		tallies := votes[key]

		best := tallies[0]
		for _, t := range tallies[1:] {
			if t.count > best.count {
				best = t
			}
		}

		// Tie on the top count between two candidates is a conflict.
		var tied []*voteTally
		for _, t := range tallies {
			if t.count == best.count {
				tied = append(tied, t)
			}
		}
		if len(tied) >= 2 {
			conflicts = append(conflicts, models.Conflict{
				Key:    key,
				Values: []any{tied[0].value, tied[1].value},
				Votes:  []int{tied[0].count, tied[1].count},
			})
		}

		result[key] = best.value
		winningVotes += best.count
		for _, t := range tallies {
			totalVotes += t.count
		}
	}

	confidence := 0.0
	if totalVotes > 0 {
		confidence = clamp01(float64(winningVotes) / float64(totalVotes))
	}

	return &models.AggregatedResult{
		Outputs:            result,
		ContributingAgents: agentIDs(outputs),
		Confidence:         confidence,
		StrategyUsed:       string(StrategyVote),
		Conflicts:          conflicts,
		Metadata:           map[string]any{"total_votes": totalVotes},
	}
}

// consensusStrategy takes the first output as the baseline and deletes
// any key a later output disagrees on, recording the disagreement.
// Confidence is the surviving-key count over the union of all keys seen.
func consensusStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	baseline := outputs[0]
	consensus := make(map[string]any, len(baseline.Output))
	for k, v := range baseline.Output {
		consensus[k] = v
	}

	var conflicts []models.Conflict
	for _, out := range outputs[1:] {
		for _, key := range sortedKeys(out.Output) {
			value := out.Output[key]
			base, ok := consensus[key]
			if !ok {
				// Either never in the baseline or already removed by an
				// earlier disagreement; only the first disagreement per
				// key is recorded.
				continue
			}
			if !valuesEqual(base, value) {
				conflicts = append(conflicts, models.Conflict{
					Key:         key,
					Values:      []any{base, value},
					Agents:      []string{baseline.AgentID, out.AgentID},
					Confidences: []float64{baseline.Confidence, out.Confidence},
				})
				delete(consensus, key)
			}
		}
	}

	allKeys := make(map[string]bool)
	for _, out := range outputs {
		for k := range out.Output {
			allKeys[k] = true
		}
	}

	confidence := 0.0
	if len(allKeys) > 0 {
		confidence = clamp01(float64(len(consensus)) / float64(len(allKeys)))
	}

	return &models.AggregatedResult{
		Outputs:            consensus,
		ContributingAgents: agentIDs(outputs),
		Confidence:         confidence,
		StrategyUsed:       string(StrategyConsensus),
		Conflicts:          conflicts,
		Metadata:           map[string]any{"consensus_keys": len(consensus)},
	}
}

// weightedStrategy takes each key's value from the single output with
// the highest confidence among those containing the key (ties go to the
// first seen). Overall confidence is the mean across all contributing
// outputs, not just winners.
func weightedStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	weighted := make(map[string]any)
	bestConf := make(map[string]float64)
	totalWeight := 0.0

	for _, out := range outputs {
		totalWeight += out.Confidence
		for _, key := range sortedKeys(out.Output) {
			conf, seen := bestConf[key]
			if !seen || out.Confidence > conf {
				weighted[key] = out.Output[key]
				bestConf[key] = out.Confidence
			}
		}
	}

	return &models.AggregatedResult{
		Outputs:            weighted,
		ContributingAgents: agentIDs(outputs),
		Confidence:         meanConfidence(outputs),
		StrategyUsed:       string(StrategyWeighted),
		Metadata:           map[string]any{"total_weight": totalWeight},
	}
}

// bestStrategy picks the single globally-highest-confidence output;
// its map and confidence become the result verbatim. Ties go to the
// first seen.
func bestStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	best := outputs[0]
	for _, out := range outputs[1:] {
		if out.Confidence > best.Confidence {
			best = out
		}
	}

	result := make(map[string]any, len(best.Output))
	for k, v := range best.Output {
		result[k] = v
	}

	return &models.AggregatedResult{
		Outputs:            result,
		ContributingAgents: []string{best.AgentID},
		Confidence:         clamp01(best.Confidence),
		StrategyUsed:       string(StrategyBest),
		Metadata:           map[string]any{"selected_agent": best.AgentID},
	}
}

// sequentialStrategy applies outputs as an ordered pipeline of
// overwrite-merges. Pure last write wins, no conflict recording;
// confidence is the arithmetic mean.
func sequentialStrategy(outputs []*models.AgentOutput) *models.AggregatedResult {
	result := make(map[string]any)
	for _, out := range outputs {
		for k, v := range out.Output {
			result[k] = v
		}
	}

	return &models.AggregatedResult{
		Outputs:            result,
		ContributingAgents: agentIDs(outputs),
		Confidence:         meanConfidence(outputs),
		StrategyUsed:       string(StrategySequential),
		Metadata:           map[string]any{"pipeline_length": len(outputs)},
	}
}
