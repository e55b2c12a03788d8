// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Constructor Tests
// ==========================

func TestNew_RetryabilityFollowsCode(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeCatalogUnavailable, true},
		{ErrCodeQueryExecutionFailed, true},
		{ErrCodeCircuitOpen, true},
		{ErrCodeSearchTimeout, true},
		{ErrCodeInvalidFilterFormat, false},
		{ErrCodeInvalidComparison, false},
		{ErrCodeRecommendationFailed, false},
		{ErrCodeInvalidQueryType, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := New(tt.code, "details")
			assert.Equal(t, tt.retryable, e.Retryable)
			assert.NotEmpty(t, e.Message)
			assert.False(t, e.Timestamp.IsZero())
		})
	}
}

func TestWrap_Unwraps(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	e := NewCatalogUnavailableError(cause)

	assert.True(t, stderrors.Is(e, cause))
	assert.Equal(t, cause.Error(), e.Details)

	wrapped := fmt.Errorf("load: %w", e)
	assert.Same(t, e, AsStandardError(wrapped))
}

func TestAsStandardError_Plain(t *testing.T) {
	e := AsStandardError(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, e.Code)
	assert.False(t, e.Retryable)
}

func TestQueryErrorDetails(t *testing.T) {
	e := NewQueryExecutionFailedError("technology_catalog", stderrors.New("syntax error"))
	assert.Equal(t, "queryType: technology_catalog, error: syntax error", e.Details)
}

// ==========================
// BPMN Conversion Tests
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	e := NewIndexNotFoundError("technologies").WithMetadata("indexName", "technologies")
	bpmn := ConvertToBPMNError(e)

	assert.Equal(t, "INDEX_NOT_FOUND", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "INDEX_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "technologies", vars["indexName"])
	assert.Equal(t, "INDEX_NOT_FOUND", vars["originalErrorCode"])
}

func TestConvertToBPMNError_NonRetryableOverride(t *testing.T) {
	e := New(ErrCodeQueryExecutionFailed, "x")
	e.Retryable = false

	assert.Equal(t, 0, ConvertToBPMNError(e).Retries)
}

// ==========================
// Resolution Tests
// ==========================

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantThrow   bool
		wantRetries int
	}{
		{"business error is thrown", NewInvalidFilterFormatError("bad"), 3, true, 0},
		{"technical error retries", NewCatalogUnavailableError(stderrors.New("down")), 3, false, 2},
		{"retries capped by code budget", NewCircuitOpenError(stderrors.New("open")), 5, false, 2},
		{"last retry throws", NewCatalogUnavailableError(stderrors.New("down")), 1, true, 0},
		{"unknown error is thrown", stderrors.New("panic"), 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(tt.err, tt.jobRetries)
			require.NotNil(t, res.BPMN)
			assert.Equal(t, tt.wantThrow, res.Throw)
			assert.Equal(t, tt.wantRetries, res.Retries)
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeRecommendationFailed: "MATCHING",
		ErrCodeContextMatchFailed:   "MATCHING",
		ErrCodeCatalogUnavailable:   "CATALOG",
		ErrCodeInvalidComparison:    "CATALOG",
		ErrCodeQueryTimeout:         "DATABASE",
		ErrCodeCircuitOpen:          "SEARCH",
		ErrCodeIndexNotFound:        "SEARCH",
		ErrCodeInvalidFilterFormat:  "VALIDATION",
		ErrCodeInternal:             "OTHER",
	}

	for code, want := range tests {
		t.Run(string(code), func(t *testing.T) {
			assert.Equal(t, want, GetErrorCategory(code))
		})
	}
}
