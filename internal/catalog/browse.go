// internal/catalog/browse.go
package catalog

import (
	"strings"

	"atio-knowledge-base/internal/models"
)

// FilterAll disables the category or cost constraint.
const FilterAll = "All"

type Filter struct {
	Search   string `json:"search"`
	Category string `json:"category"`
	MaxCost  string `json:"maxCost"`
}

type Stats struct {
	Total      int `json:"total"`
	Displayed  int `json:"displayed"`
	Categories int `json:"categories"`
	Regions    int `json:"regions"`
}

// Browse keeps the records whose name or description contains the search
// text (case-insensitive) and that pass the category and cost ceiling.
func Browse(records []models.Technology, f Filter) []models.Technology {
	search := strings.ToLower(f.Search)

	out := make([]models.Technology, 0, len(records))
	for _, t := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Category != "" && f.Category != FilterAll && string(t.Category) != f.Category {
			continue
		}
		if !withinCost(t.Cost, f.MaxCost) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func withinCost(cost models.Cost, maxCost string) bool {
	switch models.Cost(maxCost) {
	case models.CostLow:
		return cost == models.CostLow
	case models.CostMedium:
		return cost == models.CostLow || cost == models.CostMedium
	default:
		return true
	}
}

// ComputeStats counts distinct categories and regions over the full
// collection, not the displayed subset.
func ComputeStats(all, displayed []models.Technology) Stats {
	categories := make(map[models.Category]struct{})
	regions := make(map[string]struct{})
	for _, t := range all {
		categories[t.Category] = struct{}{}
		for _, r := range t.Regions {
			regions[r] = struct{}{}
		}
	}

	return Stats{
		Total:      len(all),
		Displayed:  len(displayed),
		Categories: len(categories),
		Regions:    len(regions),
	}
}
