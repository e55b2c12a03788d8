// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "atio-knowledge-base/internal/models"

type Input struct {
	QueryType string                 `json:"queryType"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

type Output struct {
	Data          interface{} `json:"data"`
	RowCount      int         `json:"rowCount"`
	ExecutionTime int64       `json:"executionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeTechnologyCatalog    = models.QueryTypeTechnologyCatalog
	QueryTypeTechnologyDetails    = models.QueryTypeTechnologyDetails
	QueryTypeTechnologyComparison = models.QueryTypeTechnologyComparison
)
