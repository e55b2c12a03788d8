// Package errors maps worker failures onto the BPMN error codes the
// knowledge base processes catch, and decides which ones Zeebe retries.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

type ErrorCode string

const (
	ErrCodeRecommendationFailed ErrorCode = "RECOMMENDATION_FAILED"
	ErrCodeContextMatchFailed   ErrorCode = "CONTEXT_MATCH_FAILED"
	ErrCodeCatalogUnavailable   ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeInvalidFilterFormat  ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeInvalidComparison    ErrorCode = "INVALID_COMPARISON"
	ErrCodeInvalidInput         ErrorCode = "INVALID_INPUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeCircuitOpen                   ErrorCode = "CIRCUIT_OPEN"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape every worker hands to ErrorHandler.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error variables sent to Zeebe.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is what the process sees, either as a thrown error or as the
// variables on a failed job.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

var defaultMessages = map[ErrorCode]string{
	ErrCodeRecommendationFailed:          "Failed to rank technologies for profile",
	ErrCodeContextMatchFailed:            "Failed to match technologies to context",
	ErrCodeCatalogUnavailable:            "Technology catalog could not be loaded",
	ErrCodeInvalidFilterFormat:           "Invalid catalog filter format",
	ErrCodeInvalidComparison:             "Invalid technology comparison selection",
	ErrCodeInvalidInput:                  "Job variables failed validation",
	ErrCodeDatabaseConnectionFailed:      "Database connection error",
	ErrCodeQueryExecutionFailed:          "Database query execution error",
	ErrCodeQueryTimeout:                  "Database query timeout",
	ErrCodeInvalidQueryType:              "Unsupported query type",
	ErrCodeElasticsearchConnectionFailed: "Elasticsearch connection error",
	ErrCodeSearchQueryFailed:             "Search query execution error",
	ErrCodeSearchTimeout:                 "Search query timeout",
	ErrCodeIndexNotFound:                 "Search index not found",
	ErrCodeCircuitOpen:                   "Search temporarily disabled by circuit breaker",
	ErrCodeInternal:                      "Unexpected error",
}

// New builds a StandardError whose retryability follows GetRetryCount.
func New(code ErrorCode, details string) *StandardError {
	msg, ok := defaultMessages[code]
	if !ok {
		msg = string(code)
	}
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: GetRetryCount(code) > 0,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap is New with err as details and as the unwrap target.
func Wrap(code ErrorCode, err error) *StandardError {
	if err == nil {
		return New(code, "")
	}
	e := New(code, err.Error())
	e.cause = err
	return e
}

func NewCatalogUnavailableError(err error) *StandardError {
	return Wrap(ErrCodeCatalogUnavailable, err)
}

func NewInvalidFilterFormatError(details string) *StandardError {
	return New(ErrCodeInvalidFilterFormat, details)
}

func NewInvalidComparisonError(err error) *StandardError {
	return Wrap(ErrCodeInvalidComparison, err)
}

func NewInvalidInputError(details string) *StandardError {
	return New(ErrCodeInvalidInput, details)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	e := Wrap(ErrCodeQueryExecutionFailed, err)
	e.Details = fmt.Sprintf("queryType: %s, error: %s", queryType, e.Details)
	return e
}

func NewQueryTimeoutError(queryType string) *StandardError {
	return New(ErrCodeQueryTimeout, "queryType: "+queryType)
}

func NewInvalidQueryTypeError(queryType string) *StandardError {
	return New(ErrCodeInvalidQueryType, "queryType: "+queryType)
}

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	e := Wrap(ErrCodeSearchQueryFailed, err)
	e.Details = fmt.Sprintf("queryType: %s, error: %s", queryType, e.Details)
	return e
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return New(ErrCodeSearchTimeout, "queryType: "+queryType)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return New(ErrCodeIndexNotFound, "index: "+indexName)
}

func NewCircuitOpenError(err error) *StandardError {
	return Wrap(ErrCodeCircuitOpen, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping lists the codes the BPMN models catch. Internal and BPMN
// codes are identical.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeRecommendationFailed:          "RECOMMENDATION_FAILED",
	ErrCodeContextMatchFailed:            "CONTEXT_MATCH_FAILED",
	ErrCodeCatalogUnavailable:            "CATALOG_UNAVAILABLE",
	ErrCodeInvalidFilterFormat:           "INVALID_FILTER_FORMAT",
	ErrCodeInvalidComparison:             "INVALID_COMPARISON",
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeInvalidQueryType:              "INVALID_QUERY_TYPE",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeCircuitOpen:                   "CIRCUIT_OPEN",
}

// GetRetryCount is the number of Zeebe retries a code is worth. Zero means
// the error is thrown to the process.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed:
		return 3
	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeCircuitOpen:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandardError unwraps err to a StandardError, falling back to
// INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return Wrap(ErrCodeInternal, err)
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "RECOMMENDATION") || strings.Contains(codeStr, "CONTEXT_MATCH"):
		return "MATCHING"
	case strings.Contains(codeStr, "CATALOG") || strings.Contains(codeStr, "COMPARISON"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") ||
		strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "CIRCUIT"):
		return "SEARCH"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
