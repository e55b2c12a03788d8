// internal/common/camunda/worker_test.go
package camunda

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"atio-knowledge-base/internal/common/camunda/camundatest"
	"atio-knowledge-base/internal/common/errors"
	"atio-knowledge-base/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ==========================
// Test Helper Functions
// ==========================

var profileSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "userProfile": {
      "type": "object",
      "required": ["region"],
      "properties": {"region": {"type": "string"}}
    }
  },
  "required": ["userProfile"]
}`)

func testInstrumentation(t *testing.T) Instrumentation {
	log := logger.NewTestLogger(t)
	return Instrumentation{
		Failer: errors.NewErrorHandler(log),
		Logger: log,
	}
}

func completingHandler(calls *int) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		*calls++
		_ = CompleteJob(context.Background(), client, job, map[string]int{"count": 1})
	}
}

// ==========================
// Instrument Tests
// ==========================

func TestInstrument_PassesValidJob(t *testing.T) {
	client := camundatest.NewJobClient()
	calls := 0

	handle := Instrument("rank-by-profile", profileSchema, completingHandler(&calls), testInstrumentation(t))
	handle(client, camundatest.NewJob(t, 1, "rank-by-profile", map[string]interface{}{
		"userProfile": map[string]string{"region": "South Asia"},
	}))

	assert.Equal(t, 1, calls)
	var out map[string]int
	client.Gateway.CompletedVariables(t, &out)
	assert.Equal(t, 1, out["count"])
}

func TestInstrument_RejectsInvalidVariables(t *testing.T) {
	tests := []struct {
		name      string
		variables interface{}
	}{
		{"missing profile", map[string]interface{}{"limit": 3}},
		{"profile without region", map[string]interface{}{"userProfile": map[string]string{}}},
		{"not json", "{broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := camundatest.NewJobClient()
			calls := 0

			handle := Instrument("rank-by-profile", profileSchema, completingHandler(&calls), testInstrumentation(t))
			handle(client, camundatest.NewJob(t, 2, "rank-by-profile", tt.variables))

			assert.Zero(t, calls)
			require.Len(t, client.Gateway.Thrown(), 1)
			assert.Equal(t, "INVALID_INPUT", client.Gateway.Thrown()[0].ErrorCode)
			assert.Empty(t, client.Gateway.Completed())
		})
	}
}

func TestInstrument_NoSchemaSkipsValidation(t *testing.T) {
	client := camundatest.NewJobClient()
	calls := 0

	handle := Instrument("catalog-analytics", nil, completingHandler(&calls), testInstrumentation(t))
	handle(client, camundatest.NewJob(t, 3, "catalog-analytics", "{}"))

	assert.Equal(t, 1, calls)
	assert.Len(t, client.Gateway.Completed(), 1)
}

func TestInstrument_RecoversPanic(t *testing.T) {
	client := camundatest.NewJobClient()

	panicky := func(worker.JobClient, entities.Job) { panic("nil map") }
	handle := Instrument("browse-technologies", nil, panicky, testInstrumentation(t))

	assert.NotPanics(t, func() {
		handle(client, camundatest.NewJob(t, 4, "browse-technologies", "{}"))
	})
	require.Len(t, client.Gateway.Thrown(), 1)
	assert.Equal(t, "INTERNAL_ERROR", client.Gateway.Thrown()[0].ErrorCode)
}

func TestTrackingClient_Outcome(t *testing.T) {
	tracked := &trackingClient{JobClient: camundatest.NewJobClient()}
	assert.Equal(t, OutcomeUnknown, tracked.outcome())

	tracked.NewFailJobCommand()
	assert.Equal(t, OutcomeFailed, tracked.outcome())

	tracked.NewCompleteJobCommand()
	assert.Equal(t, OutcomeCompleted, tracked.outcome())
}

// ==========================
// Error Handler Integration
// ==========================

func TestErrorHandler_FailsRetryableJob(t *testing.T) {
	client := camundatest.NewJobClient()
	job := camundatest.NewJob(t, 5, "match-by-context", "{}")

	res := errors.NewErrorHandler(logger.NewNoOpLogger()).
		HandleJobError(context.Background(), client, job, errors.NewCatalogUnavailableError(stderrors.New("db down")))

	assert.False(t, res.Throw)
	require.Len(t, client.Gateway.Failed(), 1)
	failed := client.Gateway.Failed()[0]
	assert.Equal(t, int32(2), failed.Retries)
	assert.Equal(t, int64(5), failed.JobKey)
}

// ==========================
// Retry Tests
// ==========================

func TestExecuteWithRetry(t *testing.T) {
	retry := &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("retries transient errors", func(t *testing.T) {
		attempts := 0
		result, err := executeWithRetry(context.Background(), retry, func(context.Context) (interface{}, error) {
			attempts++
			if attempts < 3 {
				return nil, status.Error(codes.Unavailable, "gateway unavailable")
			}
			return "ok", nil
		}, "create instance")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		attempts := 0
		_, err := executeWithRetry(context.Background(), retry, func(context.Context) (interface{}, error) {
			attempts++
			return nil, status.Error(codes.NotFound, "process not found")
		}, "create instance")

		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		attempts := 0
		_, err := executeWithRetry(context.Background(), retry, func(context.Context) (interface{}, error) {
			attempts++
			return nil, stderrors.New("connection refused")
		}, "create instance")

		assert.Error(t, err)
		assert.Equal(t, 4, attempts)
	})
}
