package aggregate

import (
	"fmt"

	"github.com/swarmlab/convene/pkg/models"
)

// Requirements configures result validation.
type Requirements struct {
	// RequiredOutputs lists keys that must be present in the result.
	RequiredOutputs []string
	// MaxConflicts is the number of conflicts tolerated before
	// validation fails. Conflicts at or below the limit produce a
	// warning instead.
	MaxConflicts int
	// MinConfidence is the minimum acceptable overall confidence.
	MinConfidence float64
}

// DefaultRequirements returns the standard validation thresholds:
// up to 3 conflicts tolerated, confidence at least 0.7.
func DefaultRequirements() Requirements {
	return Requirements{
		MaxConflicts:  3,
		MinConfidence: 0.7,
	}
}

// ValidateResult checks an aggregated result against requirements.
// Missing required keys, excess conflicts, and low confidence are
// errors; tolerated conflicts are a warning. The quality score is the
// confidence discounted 0.1 per error and 0.05 per warning, clamped to
// [0,1]. IsValid is true iff there are no errors.
func (a *Aggregator) ValidateResult(result *models.AggregatedResult, req Requirements) *models.ValidationResult {
	var errs []string
	var warnings []string

	for _, key := range req.RequiredOutputs {
		if _, ok := result.Outputs[key]; !ok {
			errs = append(errs, fmt.Sprintf("missing required output: %s", key))
		}
	}

	if n := len(result.Conflicts); n > 0 {
		if n > req.MaxConflicts {
			errs = append(errs, fmt.Sprintf("too many conflicts: %d (max: %d)", n, req.MaxConflicts))
		} else {
			warnings = append(warnings, fmt.Sprintf("found %d conflicts", n))
		}
	}

	if result.Confidence < req.MinConfidence {
		errs = append(errs, fmt.Sprintf("confidence %.2f below threshold %.2f", result.Confidence, req.MinConfidence))
	}

	quality := result.Confidence - 0.1*float64(len(errs)) - 0.05*float64(len(warnings))

	return &models.ValidationResult{
		IsValid:      len(errs) == 0,
		Errors:       errs,
		Warnings:     warnings,
		QualityScore: clamp01(quality),
	}
}
