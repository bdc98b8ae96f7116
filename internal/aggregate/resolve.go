package aggregate

import (
	"fmt"

	"github.com/swarmlab/convene/pkg/models"
)

// ResolutionStrategy selects how ResolveConflicts picks a winner per
// conflict.
type ResolutionStrategy string

const (
	// ResolveMajority picks the candidate with the most votes.
	ResolveMajority ResolutionStrategy = "majority"
	// ResolveWeighted picks the candidate with the highest combined
	// vote-and-confidence weight.
	ResolveWeighted ResolutionStrategy = "weighted"
	// ResolveConfidence picks the candidate from the most confident
	// producer.
	ResolveConfidence ResolutionStrategy = "confidence"
)

// Valid returns true if the strategy is a known value.
func (s ResolutionStrategy) Valid() bool {
	switch s {
	case ResolveMajority, ResolveWeighted, ResolveConfidence:
		return true
	default:
		return false
	}
}

// ResolveConflicts turns a conflict list into resolved key/value pairs.
// When the same key appears in multiple conflicts, the later resolution
// wins. An unknown strategy is an error. Conflicts with no candidate
// values are skipped.
func (a *Aggregator) ResolveConflicts(conflicts []models.Conflict, strategy ResolutionStrategy) (map[string]any, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unknown resolution strategy: %q", strategy)
	}

	resolved := make(map[string]any, len(conflicts))
	for _, c := range conflicts {
		if len(c.Values) == 0 {
			continue
		}
		switch strategy {
		case ResolveMajority:
			resolved[c.Key] = pickByVotes(c)
		case ResolveWeighted:
			resolved[c.Key] = pickByWeight(c)
		case ResolveConfidence:
			resolved[c.Key] = pickByConfidence(c)
		}
	}
	return resolved, nil
}

// pickByVotes returns the candidate with the highest vote count, or the
// first candidate when no counts were recorded. Ties go to the earlier
// candidate.
func pickByVotes(c models.Conflict) any {
	if len(c.Votes) == 0 {
		return c.Values[0]
	}
	best := 0
	for i := 1; i < len(c.Values) && i < len(c.Votes); i++ {
		if c.Votes[i] > c.Votes[best] {
			best = i
		}
	}
	return c.Values[best]
}

// pickByWeight scores each candidate by vote count plus producer
// confidence, so confidence breaks vote ties and substitutes for
// missing counts.
func pickByWeight(c models.Conflict) any {
	best := 0
	bestScore := weightOf(c, 0)
	for i := 1; i < len(c.Values); i++ {
		if score := weightOf(c, i); score > bestScore {
			best = i
			bestScore = score
		}
	}
	return c.Values[best]
}

// weightOf combines the vote count and confidence recorded for
// candidate i, treating absent entries as zero.
func weightOf(c models.Conflict, i int) float64 {
	score := 0.0
	if i < len(c.Votes) {
		score += float64(c.Votes[i])
	}
	if i < len(c.Confidences) {
		score += c.Confidences[i]
	}
	return score
}

// pickByConfidence returns the candidate whose producer reported the
// highest confidence, or the first candidate when none was recorded.
// Ties go to the earlier candidate.
func pickByConfidence(c models.Conflict) any {
	if len(c.Confidences) == 0 {
		return c.Values[0]
	}
	best := 0
	for i := 1; i < len(c.Values) && i < len(c.Confidences); i++ {
		if c.Confidences[i] > c.Confidences[best] {
			best = i
		}
	}
	return c.Values[best]
}
