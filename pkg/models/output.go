package models

import "time"

// AgentOutput is one agent's output for a logical task, as fed to the
// result aggregator.
type AgentOutput struct {
	// AgentID identifies the producing agent.
	AgentID string `json:"agent_id"`
	// RoleName is the role the agent was filling.
	RoleName string `json:"role_name,omitempty"`
	// Output is the produced key/value map.
	Output map[string]any `json:"output"`
	// Confidence is the agent's confidence in its output, in [0,1].
	Confidence float64 `json:"confidence"`
	// Metadata holds arbitrary annotations.
	Metadata map[string]any `json:"metadata,omitempty"`
	// Timestamp is when the output was produced.
	Timestamp time.Time `json:"timestamp"`
}

// Valid returns true if the output map is non-empty and the confidence
// is within [0,1].
func (o *AgentOutput) Valid() bool {
	if len(o.Output) == 0 {
		return false
	}
	return o.Confidence >= 0 && o.Confidence <= 1
}

// Conflict is a recorded disagreement between outputs for the same key
// during aggregation.
type Conflict struct {
	// Key is the disputed output key.
	Key string `json:"key"`
	// Values are the competing values, in the order they were seen.
	Values []any `json:"values"`
	// Agents are the agents that produced the competing values, aligned
	// with Values where known.
	Agents []string `json:"agents,omitempty"`
	// Votes are per-value vote counts, aligned with Values. Populated by
	// the vote strategy.
	Votes []int `json:"votes,omitempty"`
	// Confidences are per-value producer confidences, aligned with
	// Values where known.
	Confidences []float64 `json:"confidences,omitempty"`
}

// AggregatedResult is the reconciled output of several agents for one
// logical task.
type AggregatedResult struct {
	// Outputs is the merged key/value map.
	Outputs map[string]any `json:"outputs"`
	// ContributingAgents lists agent ids whose outputs fed the result.
	ContributingAgents []string `json:"contributing_agents,omitempty"`
	// Confidence is the overall confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// StrategyUsed names the aggregation strategy applied.
	StrategyUsed string `json:"strategy_used"`
	// Conflicts lists disagreements detected during aggregation.
	Conflicts []Conflict `json:"conflicts,omitempty"`
	// Metadata holds strategy-specific annotations.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ValidationResult is the outcome of validating an aggregated result
// against requirements.
type ValidationResult struct {
	// IsValid is true iff no errors were found.
	IsValid bool `json:"is_valid"`
	// Errors are hard validation failures.
	Errors []string `json:"errors,omitempty"`
	// Warnings are soft issues that do not invalidate the result.
	Warnings []string `json:"warnings,omitempty"`
	// QualityScore rates the result in [0,1], discounted per issue.
	QualityScore float64 `json:"quality_score"`
}
