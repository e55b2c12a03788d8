// internal/workers/data-access/query-postgresql/queries/technology.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"atio-knowledge-base/internal/catalog"
)

// TechnologyCatalog returns every record ordered by name.
func TechnologyCatalog(ctx context.Context, db *sql.DB, _ map[string]interface{}) (Result, error) {
	records, err := catalog.ListTechnologies(ctx, db)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: records, RowCount: len(records)}, nil
}

// TechnologyDetails returns one record, or nil data with rowCount 0 when the
// id is unknown.
func TechnologyDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (Result, error) {
	id, err := intParam(params, "technologyId")
	if err != nil {
		return Result{}, err
	}

	record, err := catalog.TechnologyByID(ctx, db, id)
	switch {
	case errors.Is(err, catalog.ErrTechnologyNotFound):
		return Result{}, nil
	case err != nil:
		return Result{}, err
	}
	return Result{Data: record, RowCount: 1}, nil
}

// TechnologyComparison returns the records for the ids param, which may be
// "1,2" or an array. Ids go through the same selection rules as the
// compare worker.
func TechnologyComparison(ctx context.Context, db *sql.DB, params map[string]interface{}) (Result, error) {
	ids, err := idsParam(params, "ids")
	if err != nil {
		return Result{}, err
	}

	selected, err := catalog.SelectForComparison(ids)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidParam, err)
	}

	records, err := catalog.TechnologiesByIDs(ctx, db, selected)
	if err != nil {
		return Result{}, err
	}
	return Result{Data: records, RowCount: len(records)}, nil
}

func intParam(params map[string]interface{}, name string) (int, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}

	var id int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidParam, name)
		}
		id = int(v)
	case int:
		id = v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, name, v)
		}
		id = n
	default:
		return 0, fmt.Errorf("%w: %s has type %T", ErrInvalidParam, name, raw)
	}

	if id <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidParam, name)
	}
	return id, nil
}

func idsParam(params map[string]interface{}, name string) ([]int, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingParam, name)
	}

	switch v := raw.(type) {
	case string:
		ids, err := catalog.ParseIDs(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParam, err)
		}
		return ids, nil
	case []interface{}:
		ids := make([]int, 0, len(v))
		for _, item := range v {
			id, err := intParam(map[string]interface{}{name: item}, name)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, nil
	case []int:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s has type %T", ErrInvalidParam, name, raw)
	}
}
