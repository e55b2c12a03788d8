// internal/workers/data-access/query-elasticsearch/queries/builders.go
package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingID        = errors.New("technologyId is required")
)

const (
	QueryTypeTechnologySearch    = "technology_search"
	QueryTypeRelatedTechnologies = "related_technologies"
	maxPageSize                  = 100
	defaultPageSize              = 20
	relatedMinTermFreq           = 1
	relatedMaxQueryTerms         = 25
)

// Filters mirrors the browse form plus an optional region facet.
type Filters struct {
	Search   string   `json:"search,omitempty"`
	Category string   `json:"category,omitempty"`
	MaxCost  string   `json:"maxCost,omitempty"`
	Regions  []string `json:"regions,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type ElasticsearchQuery struct {
	Index        string
	QueryType    string
	Filters      Filters
	TechnologyID int
	Pagination   Pagination
}

// Normalize clamps pagination: from >= 0, 1 <= size <= 100.
func (p Pagination) Normalize(defaultSize int) Pagination {
	if defaultSize <= 0 {
		defaultSize = defaultPageSize
	}
	if p.From < 0 {
		p.From = 0
	}
	switch {
	case p.Size < 1:
		p.Size = defaultSize
	case p.Size > maxPageSize:
		p.Size = maxPageSize
	}
	return p
}

func BuildQuery(eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case QueryTypeTechnologySearch:
		queryBody = buildTechnologySearchQuery(eq.Filters)
	case QueryTypeRelatedTechnologies:
		if eq.TechnologyID <= 0 {
			return nil, ErrMissingID
		}
		queryBody = buildRelatedTechnologiesQuery(eq.Index, eq.TechnologyID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	from, size := eq.Pagination.From, eq.Pagination.Size
	return &esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  bytes.NewReader(body),
		From:  &from,
		Size:  &size,
	}, nil
}

func buildTechnologySearchQuery(f Filters) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if f.Search != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Search,
				"fields": []string{"name^3", "description^2", "fullDescription", "benefits"},
				"type":   "best_fields",
			},
		})
	}

	if f.Category != "" && f.Category != "All" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"category": f.Category},
		})
	}

	if costs := costsUpTo(f.MaxCost); costs != nil {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"cost": costs},
		})
	}

	if len(f.Regions) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"regions": f.Regions},
		})
	}

	if len(must) == 0 {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}
}

// costsUpTo lists the cost tiers at or below maxCost. nil means no ceiling.
func costsUpTo(maxCost string) []string {
	switch maxCost {
	case "Low":
		return []string{"Low"}
	case "Medium":
		return []string{"Low", "Medium"}
	default:
		return nil
	}
}

func buildRelatedTechnologiesQuery(index string, id int) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "description", "benefits", "suitableFor"},
				"like": []interface{}{
					map[string]interface{}{"_index": index, "_id": strconv.Itoa(id)},
				},
				"min_term_freq":   relatedMinTermFreq,
				"min_doc_freq":    1,
				"max_query_terms": relatedMaxQueryTerms,
			},
		},
	}
}
