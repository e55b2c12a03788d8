// pkg/registry/schema.go
package registry

import "encoding/json"

type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity describes one task type the worker manager can serve.
// InputSchema is a JSON schema applied to the job variables before the
// handler runs; an empty schema disables the check.
type Activity struct {
	ID                   string          `json:"id"`
	DisplayName          string          `json:"displayName"`
	Description          string          `json:"description"`
	Category             string          `json:"category"`
	Version              string          `json:"version"`
	TaskType             string          `json:"taskType"`
	ImplementationStatus string          `json:"implementationStatus"`
	InputSchema          json.RawMessage `json:"inputSchema,omitempty"`
	OutputSchema         json.RawMessage `json:"outputSchema,omitempty"`
	ErrorCodes           []string        `json:"errorCodes"`
	Timeout              string          `json:"timeout"`
	Retries              int             `json:"retries"`
	Workflows            []string        `json:"workflows"`
	Tags                 []string        `json:"tags"`
}

const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)
