// internal/workers/catalog/browse-technologies/handler_test.go
package browsetechnologies

import (
	"context"
	stderrors "errors"
	"testing"

	"atio-knowledge-base/internal/catalog"
	"atio-knowledge-base/internal/common/camunda/camundatest"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"
	"atio-knowledge-base/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type brokenSource struct{}

func (brokenSource) All(context.Context) ([]models.Technology, error) {
	return nil, stderrors.New("postgres down")
}

func seedSource(t *testing.T) catalog.StaticSource {
	records, err := catalog.Seed()
	require.NoError(t, err)
	return catalog.StaticSource(records)
}

func createTestHandler(t *testing.T, source catalog.Source) *Handler {
	return NewHandler(LoadConfig(), source, logger.NewTestLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_Filters(t *testing.T) {
	source := seedSource(t)

	tests := []struct {
		name     string
		filters  catalog.Filter
		validate func(t *testing.T, out *Output)
	}{
		{
			name:    "defaults show everything",
			filters: catalog.Filter{Category: "All", MaxCost: "All"},
			validate: func(t *testing.T, out *Output) {
				assert.Len(t, out.Technologies, len(source))
				assert.Equal(t, out.Stats.Total, out.Stats.Displayed)
			},
		},
		{
			name:    "search matches name case-insensitively",
			filters: catalog.Filter{Search: "DRIP"},
			validate: func(t *testing.T, out *Output) {
				require.Len(t, out.Technologies, 1)
				assert.Equal(t, "Drip Irrigation", out.Technologies[0].Name)
			},
		},
		{
			name:    "low cost ceiling",
			filters: catalog.Filter{MaxCost: "Low"},
			validate: func(t *testing.T, out *Output) {
				require.NotEmpty(t, out.Technologies)
				for _, tech := range out.Technologies {
					assert.Equal(t, models.CostLow, tech.Cost)
				}
			},
		},
		{
			name:    "category",
			filters: catalog.Filter{Category: "Energy"},
			validate: func(t *testing.T, out *Output) {
				require.NotEmpty(t, out.Technologies)
				for _, tech := range out.Technologies {
					assert.Equal(t, models.CategoryEnergy, tech.Category)
				}
			},
		},
		{
			name:    "no hits keep full stats",
			filters: catalog.Filter{Search: "no such technology"},
			validate: func(t *testing.T, out *Output) {
				assert.Empty(t, out.Technologies)
				assert.Equal(t, 0, out.Stats.Displayed)
				assert.Equal(t, len(source), out.Stats.Total)
				assert.Greater(t, out.Stats.Categories, 0)
				assert.Greater(t, out.Stats.Regions, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := createTestHandler(t, source).Execute(context.Background(), &Input{Filters: tt.filters})
			require.NoError(t, err)
			tt.validate(t, out)
		})
	}
}

func TestExecute_InlineTechnologies(t *testing.T) {
	inline := []models.Technology{
		{ID: 1, Name: "Hand Pump", Category: models.CategoryWaterManagement, Cost: models.CostLow, Regions: []string{"East Africa"}},
	}

	out, err := createTestHandler(t, brokenSource{}).Execute(context.Background(), &Input{Technologies: inline})
	require.NoError(t, err)

	assert.Equal(t, catalog.Stats{Total: 1, Displayed: 1, Categories: 1, Regions: 1}, out.Stats)
}

func TestExecute_CatalogUnavailable(t *testing.T) {
	_, err := createTestHandler(t, brokenSource{}).Execute(context.Background(), &Input{})

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, stdErr.Code)
}

// ==========================
// Handle Tests
// ==========================

func TestHandle(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		client := camundatest.NewJobClient()
		createTestHandler(t, seedSource(t)).Handle(client, camundatest.NewJob(t, 1, TaskType,
			`{"filters": {"search": "solar", "category": "All", "maxCost": "All"}}`))

		var out Output
		client.Gateway.CompletedVariables(t, &out)
		require.NotEmpty(t, out.Technologies)
		assert.Equal(t, len(out.Technologies), out.Stats.Displayed)
	})

	t.Run("retries when catalog is down", func(t *testing.T) {
		client := camundatest.NewJobClient()
		createTestHandler(t, brokenSource{}).Handle(client, camundatest.NewJob(t, 2, TaskType, `{}`))

		require.Len(t, client.Gateway.Failed(), 1)
		assert.Equal(t, int32(2), client.Gateway.Failed()[0].Retries)
	})
}
