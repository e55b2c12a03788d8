// internal/workers/catalog/browse-technologies/models.go
package browsetechnologies

import (
	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/models"
)

// Input takes the parsedFilters produced by parse-catalog-filters.
type Input struct {
	Technologies []models.Technology `json:"technologies,omitempty"`
	Filters      catalog.Filter      `json:"filters"`
}

type Output struct {
	Technologies []models.Technology `json:"technologies"`
	Stats        catalog.Stats       `json:"stats"`
}
