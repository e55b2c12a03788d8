// internal/matching/filter.go
package matching

import "atio-knowledge-base/internal/models"

// FilterByContext returns the records compatible with ctx, in input order.
//
// A context with no field set selects nothing: the caller has to pick at
// least one criterion. Environment is accepted but imposes no constraint.
func FilterByContext(records []models.Technology, ctx models.UserContext) []models.Technology {
	matched := make([]models.Technology, 0, len(records))
	if ctx.IsEmpty() {
		return matched
	}

	for i := range records {
		if matchesContext(&records[i], ctx) {
			matched = append(matched, records[i])
		}
	}
	return matched
}

func matchesContext(t *models.Technology, ctx models.UserContext) bool {
	if ctx.Region != "" && !t.HasRegion(ctx.Region) {
		return false
	}

	switch ctx.IncomeLevel {
	case models.IncomeLow, models.IncomeLowerMiddle:
		if t.Cost == models.CostHigh {
			return false
		}
	}

	return true
}
