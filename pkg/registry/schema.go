// pkg/registry/schema.go
package registry

import "encoding/json"

// ActivityRegistry lists every BPMN service task the workers implement.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	GeneratedAt string     `json:"generatedAt"`
	Activities  []Activity `json:"activities"`
}

type Activity struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	TaskType    string          `json:"taskType"`
	Enabled     bool            `json:"enabled"`
	InputSchema json.RawMessage `json:"inputSchema"`
	ErrorCodes  []string        `json:"errorCodes"`
	Timeout     string          `json:"timeout"`
	Retries     int             `json:"retries"`
	Tags        []string        `json:"tags,omitempty"`
}
