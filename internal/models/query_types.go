// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeTechnologyCatalog    QueryType = "technology_catalog"
	QueryTypeTechnologyDetails    QueryType = "technology_details"
	QueryTypeTechnologyComparison QueryType = "technology_comparison"
)
