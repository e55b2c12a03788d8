// internal/common/validation/schema.go
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaResult lists every violation found in a document.
type SchemaResult struct {
	Valid  bool          `json:"valid"`
	Errors []SchemaError `json:"errors,omitempty"`
}

type SchemaError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Error joins the violations into one line for logs and BPMN error details.
func (r *SchemaResult) Error() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

var (
	schemaCache   = map[string]*gojsonschema.Schema{}
	schemaCacheMu sync.RWMutex
)

// CompileSchema parses a JSON schema once per distinct schema text.
func CompileSchema(schema json.RawMessage) (*gojsonschema.Schema, error) {
	key := string(schema)

	schemaCacheMu.RLock()
	compiled, ok := schemaCache[key]
	schemaCacheMu.RUnlock()
	if ok {
		return compiled, nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}

	schemaCacheMu.Lock()
	schemaCache[key] = compiled
	schemaCacheMu.Unlock()
	return compiled, nil
}

// ValidateJSON checks document against schema. An error is returned only
// when the schema or document cannot be parsed.
func ValidateJSON(schema json.RawMessage, document []byte) (*SchemaResult, error) {
	compiled, err := CompileSchema(schema)
	if err != nil {
		return nil, err
	}

	res, err := compiled.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}

	out := &SchemaResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, SchemaError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	return out, nil
}

// ValidateValue marshals v and validates it against schema.
func ValidateValue(schema json.RawMessage, v interface{}) (*SchemaResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return ValidateJSON(schema, data)
}
