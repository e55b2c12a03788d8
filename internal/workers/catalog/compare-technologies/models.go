// internal/workers/catalog/compare-technologies/models.go
package comparetechnologies

import (
	"encoding/json"

	"atio-knowledge-base/internal/models"
)

// Input.IDs is either the query string form "1,4" or a JSON array of ids.
type Input struct {
	IDs json.RawMessage `json:"ids"`
}

type Output struct {
	Technologies []models.Technology `json:"technologies"`
}
