// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"atio-knowledge-base/internal/common/validation"
)

var ErrActivityNotFound = errors.New("activity not found")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry back with a fresh LastUpdated stamp.
func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Lookup finds the activity serving taskType.
func (r *ActivityRegistry) Lookup(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, taskType)
}

// InputSchemaFor returns the input schema of taskType, or nil when the task
// is unregistered or declares none.
func (r *ActivityRegistry) InputSchemaFor(taskType string) json.RawMessage {
	a, err := r.Lookup(taskType)
	if err != nil || len(a.InputSchema) == 0 {
		return nil
	}
	return a.InputSchema
}

// Validate checks ids and task types are unique, every activity names its
// task type, timeouts parse and schemas compile. All problems are joined.
func (r *ActivityRegistry) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for _, a := range r.Activities {
		if a.ID == "" {
			errs = append(errs, errors.New("activity with empty id"))
			continue
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("%s: duplicate id", a.ID))
		}
		ids[a.ID] = true

		if a.TaskType == "" {
			errs = append(errs, fmt.Errorf("%s: taskType is required", a.ID))
		} else if taskTypes[a.TaskType] {
			errs = append(errs, fmt.Errorf("%s: duplicate taskType %s", a.ID, a.TaskType))
		}
		taskTypes[a.TaskType] = true

		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("%s: timeout: %w", a.ID, err))
			}
		}
		if a.Retries < 0 {
			errs = append(errs, fmt.Errorf("%s: retries must not be negative", a.ID))
		}
		for name, schema := range map[string]json.RawMessage{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
			if len(schema) == 0 {
				continue
			}
			if _, err := validation.CompileSchema(schema); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s: %w", a.ID, name, err))
			}
		}
	}

	return errors.Join(errs...)
}
