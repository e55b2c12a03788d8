// internal/matching/reasons.go
package matching

import (
	"fmt"

	"atio-knowledge-base/internal/models"
)

// Band buckets a context score for display.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

func ScoreBand(score float64) Band {
	switch {
	case score >= 70:
		return BandHigh
	case score >= 40:
		return BandMedium
	default:
		return BandLow
	}
}

// MatchReasons explains why a matched record suits ctx.
func MatchReasons(t models.Technology, ctx models.UserContext) []string {
	reasons := []string{}

	if ctx.Region != "" && t.HasRegion(ctx.Region) {
		reasons = append(reasons, fmt.Sprintf("Proven success in %s", ctx.Region))
	}
	if ctx.IncomeLevel != "" && t.Cost != models.CostHigh {
		reasons = append(reasons, fmt.Sprintf("Affordable for %s countries", ctx.IncomeLevel))
	}
	if t.MaturityLevel == models.MaturityMature {
		reasons = append(reasons, "Mature technology with established track record")
	}

	return reasons
}
