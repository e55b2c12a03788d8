// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "atio-knowledge-base/internal/workers/data-access/query-elasticsearch/queries"

// Input.IndexName falls back to the configured catalog index.
type Input struct {
	IndexName    string             `json:"indexName,omitempty"`
	QueryType    string             `json:"queryType"`
	Filters      queries.Filters    `json:"filters"`
	TechnologyID int                `json:"technologyId,omitempty"`
	Pagination   queries.Pagination `json:"pagination"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
