// internal/matching/score.go
package matching

import "atio-knowledge-base/internal/models"

// Profile weights.
const (
	profileRegionPoints   = 30.0
	profileBudgetExact    = 25.0
	profileBudgetNear     = 15.0
	profileMaturityPoints = 20.0
	profileAdoptionWeight = 15.0
	profilePriorityPoints = 10.0

	efficiencyAdoptionThreshold = 30.0
)

// Context weights.
const (
	contextRegionPoints      = 40.0
	contextLowIncomePoints   = 30.0
	contextLowerMiddlePoints = 20.0
	contextAdoptionDivisor   = 3.0

	MaxContextScore = 100.0
)

// ScoreForProfile is the recommendations score. It is additive and not
// clamped; the usual ceiling is just above 100.
func ScoreForProfile(t models.Technology, p models.UserProfile) float64 {
	score := 0.0

	if p.Region != "" && t.HasRegion(p.Region) {
		score += profileRegionPoints
	}

	if p.Budget != "" {
		switch {
		case t.Cost == p.Budget:
			score += profileBudgetExact
		case p.Budget == models.CostMedium && t.Cost == models.CostLow:
			score += profileBudgetNear
		case p.Budget == models.CostHigh && t.Cost == models.CostMedium:
			score += profileBudgetNear
		}
	}

	if t.MaturityLevel == models.MaturityMature || t.MaturityLevel == models.MaturityProven {
		score += profileMaturityPoints
	}

	rate, parsed := ParseAdoptionRate(t.AdoptionRate)
	if parsed {
		score += rate / 100 * profileAdoptionWeight
	}

	switch p.Priority {
	case models.PriorityCost:
		if t.Cost == models.CostLow {
			score += profilePriorityPoints
		}
	case models.PriorityEfficiency:
		if parsed && rate > efficiencyAdoptionThreshold {
			score += profilePriorityPoints
		}
	case models.PrioritySustainability:
		if t.Category == models.CategoryEnergy {
			score += profilePriorityPoints
		}
	}

	return score
}

// ScoreForContext is the context matcher score, clamped to [0, 100]. It is
// meant for records that already passed FilterByContext.
func ScoreForContext(t models.Technology, ctx models.UserContext) float64 {
	score := 0.0

	if ctx.Region != "" && t.HasRegion(ctx.Region) {
		score += contextRegionPoints
	}

	switch ctx.IncomeLevel {
	case models.IncomeLow:
		if t.Cost == models.CostLow {
			score += contextLowIncomePoints
		}
	case models.IncomeLowerMiddle:
		if t.Cost != models.CostHigh {
			score += contextLowerMiddlePoints
		}
	}

	score += adoption(t.AdoptionRate) / contextAdoptionDivisor

	if score > MaxContextScore {
		return MaxContextScore
	}
	if score < 0 {
		return 0
	}
	return score
}
