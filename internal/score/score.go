// Package score extracts numeric risk scores from free-text model
// responses and classifies them into discrete risk levels.
package score

import (
	"regexp"
	"strconv"

	"github.com/opensource-finance/kestrel/internal/domain"
)

// numberPattern matches the first unsigned decimal number in the
// response text. The sign is not matched, and the first number wins
// even when the model echoes a dollar amount before its score;
// existing datasets depend on both behaviors.
var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// Extract scans free text for a risk score. It returns the first
// decimal number found, clamped to [0, 1], and whether a number was
// found at all. Substituting the neutral default on found == false is
// the caller's responsibility.
func Extract(text string) (value float64, found bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v), true
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// mediumThreshold is the lower bound of the MEDIUM band. It coincides
// with the neutral fallback score, so degraded results classify as
// MEDIUM rather than silently passing.
const mediumThreshold = 0.5

// Level maps a risk score to its discrete level. Pure and monotonic;
// band lower bounds are inclusive. The HIGH bound is the same constant
// that gates alerting.
func Level(score float64) domain.RiskLevel {
	switch {
	case score >= domain.AlertThreshold:
		return domain.RiskHigh
	case score >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
