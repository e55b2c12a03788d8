// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atio-knowledge-base/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrInvalidParam     = errors.New("invalid parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Result is what a catalog query hands back to the worker.
type Result struct {
	Data     interface{}
	RowCount int
	Duration time.Duration
}

// Query runs one named catalog read. Params come straight from the job
// variables, so numbers arrive as float64.
type Query func(ctx context.Context, db *sql.DB, params map[string]interface{}) (Result, error)

var Registry = map[models.QueryType]Query{
	models.QueryTypeTechnologyCatalog:    TechnologyCatalog,
	models.QueryTypeTechnologyDetails:    TechnologyDetails,
	models.QueryTypeTechnologyComparison: TechnologyComparison,
}

// Supported reports whether queryType has a registered query.
func Supported(queryType models.QueryType) bool {
	_, ok := Registry[queryType]
	return ok
}

// Execute looks up and runs queryType. Duration covers the whole query,
// parameter parsing included.
func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (Result, error) {
	query, ok := Registry[queryType]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	start := time.Now()
	res, err := query(ctx, db, params)
	res.Duration = time.Since(start)
	return res, err
}
