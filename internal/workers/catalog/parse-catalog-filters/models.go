// internal/workers/catalog/parse-catalog-filters/models.go
package parsecatalogfilters

import (
	"encoding/json"

	"atio-knowledge-base/internal/catalog"
)

type Input struct {
	RawFilters json.RawMessage `json:"rawFilters"`
}

type Output struct {
	ParsedFilters catalog.Filter `json:"parsedFilters"`
}
