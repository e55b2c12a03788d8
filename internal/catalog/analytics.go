// internal/catalog/analytics.go
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"atio-knowledge-base/internal/models"
)

type Analytics struct {
	Total           int                     `json:"total"`
	ByCategory      map[models.Category]int `json:"byCategory"`
	ByCost          map[models.Cost]int     `json:"byCost"`
	AverageAdoption float64                 `json:"averageAdoption"`
	MatureCount     int                     `json:"matureCount"`
}

var policyCategories = map[models.Category]bool{
	models.CategoryWaterManagement: true,
	models.CategoryEnergy:          true,
	models.CategorySoilHealth:      true,
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func Analyze(records []models.Technology) Analytics {
	a := Analytics{
		Total:      len(records),
		ByCategory: make(map[models.Category]int),
		ByCost:     make(map[models.Cost]int),
	}

	sum := 0.0
	for _, t := range records {
		a.ByCategory[t.Category]++
		a.ByCost[t.Cost]++
		sum += parseLeadingFloat(t.AdoptionRate)
		if t.MaturityLevel == models.MaturityMature {
			a.MatureCount++
		}
	}

	if a.Total > 0 {
		a.AverageAdoption = sum / float64(a.Total)
	}
	return a
}

// PolicyPriorities keeps the categories policy makers are pointed at first.
func PolicyPriorities(records []models.Technology) []models.Technology {
	out := make([]models.Technology, 0, len(records))
	for _, t := range records {
		if policyCategories[t.Category] {
			out = append(out, t)
		}
	}
	return out
}

// parseLeadingFloat returns 0 for text without a numeric prefix.
func parseLeadingFloat(s string) float64 {
	m := leadingFloat.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}
