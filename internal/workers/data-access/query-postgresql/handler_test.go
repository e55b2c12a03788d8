// internal/workers/data-access/query-postgresql/handler_test.go
package querypostgresql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"testing"
	"time"

	"atio-knowledge-base/internal/common/camunda/camundatest"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

var technologyColumns = []string{
	"id", "name", "description", "full_description", "category", "cost", "cost_range", "icon",
	"maturity_level", "adoption_rate", "regions", "benefits", "challenges", "suitable_for",
	"evidence_links", "created_at", "updated_at",
}

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func setupMockDB(t testing.TB) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func technologyRows(ids ...int) *sqlmock.Rows {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	catalog := map[int][]driver.Value{
		1: {1, "Drip Irrigation", "Water-efficient irrigation", nil, "Water Management", "Medium", nil, nil,
			"Mature", "35%", `{"South Asia","Middle East"}`, `{}`, `{}`, `{}`, `{}`, created, created},
		3: {3, "Drought-Resistant Seeds", "Climate-adapted seed", nil, "Crop Innovation", "Low", nil, nil,
			"Mature", "42%", `{"South Asia"}`, `{}`, `{}`, `{}`, `{}`, created, created},
		9: {9, "Composting Systems", "Organic soil amendment", nil, "Soil Health", "Low", nil, nil,
			"Mature", "55%", `{"East Africa"}`, `{}`, `{}`, `{}`, `{}`, created, created},
	}

	rows := sqlmock.NewRows(technologyColumns)
	for _, id := range ids {
		rows.AddRow(catalog[id]...)
	}
	return rows
}

func createTestHandler(t *testing.T, db *sql.DB) *Handler {
	return NewHandler(createTestConfig(), db, logger.NewTestLogger(t))
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "technology catalog",
			input: &Input{QueryType: string(QueryTypeTechnologyCatalog)},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM technologies\s+ORDER BY name ASC`).
					WillReturnRows(technologyRows(9, 1, 3))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 3, output.RowCount)
				data := output.Data.([]models.Technology)
				assert.Equal(t, "Composting Systems", data[0].Name)
				assert.Equal(t, []string{"South Asia", "Middle East"}, data[1].Regions)
			},
		},
		{
			name: "technology details by numeric id",
			input: &Input{
				QueryType: string(QueryTypeTechnologyDetails),
				Params:    map[string]interface{}{"technologyId": float64(3)},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM technologies\s+WHERE id = \$1`).
					WithArgs(3).
					WillReturnRows(technologyRows(3))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)
				data := output.Data.(*models.Technology)
				assert.Equal(t, "Drought-Resistant Seeds", data.Name)
				assert.Equal(t, "2025-03-01T10:00:00Z", data.CreatedAt)
			},
		},
		{
			name: "technology details by string id",
			input: &Input{
				QueryType: string(QueryTypeTechnologyDetails),
				Params:    map[string]interface{}{"technologyId": " 1 "},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE id = \$1`).
					WithArgs(1).
					WillReturnRows(technologyRows(1))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 1, output.RowCount)
			},
		},
		{
			name: "unknown technology is empty, not an error",
			input: &Input{
				QueryType: string(QueryTypeTechnologyDetails),
				Params:    map[string]interface{}{"technologyId": float64(404)},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE id = \$1`).
					WithArgs(404).
					WillReturnRows(sqlmock.NewRows(technologyColumns))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 0, output.RowCount)
				assert.Nil(t, output.Data)
			},
		},
		{
			name: "technology comparison from string",
			input: &Input{
				QueryType: string(QueryTypeTechnologyComparison),
				Params:    map[string]interface{}{"ids": "3, 1, 3"},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE id = ANY\(\$1\)`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(technologyRows(1, 3))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)
			},
		},
		{
			name: "technology comparison from array",
			input: &Input{
				QueryType: string(QueryTypeTechnologyComparison),
				Params:    map[string]interface{}{"ids": []interface{}{float64(9), "1"}},
			},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE id = ANY\(\$1\)`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(technologyRows(9, 1))
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tt.mockQuery(mock)

			output, err := createTestHandler(t, db).Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, output.ExecutionTime, int64(0))
			tt.validateOutput(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`ORDER BY name ASC`).
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(technologyRows(1))

	handler := createTestHandler(t, db)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := handler.Execute(ctx, &Input{QueryType: string(QueryTypeTechnologyCatalog)})
	requireCode(t, err, errors.ErrCodeQueryTimeout)
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		mockQuery func(mock sqlmock.Sqlmock)
		wantCode  errors.ErrorCode
	}{
		{"nil input", nil, nil, errors.ErrCodeInvalidInput},
		{"unknown query type", &Input{QueryType: "farm_records"}, nil, errors.ErrCodeInvalidQueryType},
		{"empty query type", &Input{}, nil, errors.ErrCodeInvalidQueryType},
		{
			"missing technology id",
			&Input{QueryType: string(QueryTypeTechnologyDetails)},
			nil,
			errors.ErrCodeInvalidInput,
		},
		{
			"fractional technology id",
			&Input{QueryType: string(QueryTypeTechnologyDetails), Params: map[string]interface{}{"technologyId": 1.5}},
			nil,
			errors.ErrCodeInvalidInput,
		},
		{
			"non numeric technology id",
			&Input{QueryType: string(QueryTypeTechnologyDetails), Params: map[string]interface{}{"technologyId": "abc"}},
			nil,
			errors.ErrCodeInvalidInput,
		},
		{
			"too many comparison ids",
			&Input{QueryType: string(QueryTypeTechnologyComparison), Params: map[string]interface{}{"ids": "1,2,3,4"}},
			nil,
			errors.ErrCodeInvalidInput,
		},
		{
			"comparison ids wrong type",
			&Input{QueryType: string(QueryTypeTechnologyComparison), Params: map[string]interface{}{"ids": true}},
			nil,
			errors.ErrCodeInvalidInput,
		},
		{
			"database error",
			&Input{QueryType: string(QueryTypeTechnologyCatalog)},
			func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY name ASC`).WillReturnError(stderrors.New("relation \"technologies\" does not exist"))
			},
			errors.ErrCodeQueryExecutionFailed,
		},
		{
			"scan error",
			&Input{QueryType: string(QueryTypeTechnologyCatalog)},
			func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`ORDER BY name ASC`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
			},
			errors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			if tt.mockQuery != nil {
				tt.mockQuery(mock)
			}

			_, err := createTestHandler(t, db).Execute(context.Background(), tt.input)
			requireCode(t, err, tt.wantCode)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// ==========================
// Handle Tests
// ==========================

func TestHandler_Handle(t *testing.T) {
	t.Run("completes with rows", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`ORDER BY name ASC`).WillReturnRows(technologyRows(1, 3))

		client := camundatest.NewJobClient()
		createTestHandler(t, db).Handle(client, camundatest.NewJob(t, 1, TaskType,
			`{"queryType": "technology_catalog"}`))

		var out struct {
			Data          []models.Technology `json:"data"`
			RowCount      int                 `json:"rowCount"`
			ExecutionTime int64               `json:"executionTime"`
		}
		client.Gateway.CompletedVariables(t, &out)
		assert.Equal(t, 2, out.RowCount)
		assert.Len(t, out.Data, 2)
	})

	t.Run("throws on invalid query type", func(t *testing.T) {
		db, _ := setupMockDB(t)
		client := camundatest.NewJobClient()
		createTestHandler(t, db).Handle(client, camundatest.NewJob(t, 2, TaskType, `{"queryType": "user_profile"}`))

		require.Len(t, client.Gateway.Thrown(), 1)
		assert.Equal(t, "INVALID_QUERY_TYPE", client.Gateway.Thrown()[0].ErrorCode)
	})

	t.Run("retries database errors", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(`ORDER BY name ASC`).WillReturnError(sql.ErrConnDone)

		client := camundatest.NewJobClient()
		createTestHandler(t, db).Handle(client, camundatest.NewJob(t, 3, TaskType, `{"queryType": "technology_catalog"}`))

		require.Len(t, client.Gateway.Failed(), 1)
		assert.Equal(t, int32(2), client.Gateway.Failed()[0].Retries)
	})
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkHandler_Execute_TechnologyCatalog(b *testing.B) {
	db, mock := setupMockDB(b)
	handler := NewHandler(createTestConfig(), db, logger.NewNoOpLogger())
	input := &Input{QueryType: string(QueryTypeTechnologyCatalog)}

	for i := 0; i < b.N; i++ {
		mock.ExpectQuery(`ORDER BY name ASC`).WillReturnRows(technologyRows(1, 3, 9))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = handler.Execute(context.Background(), input)
	}
}
