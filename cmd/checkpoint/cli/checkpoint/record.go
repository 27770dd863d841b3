package checkpoint

import "encoding/json"

// TimestampFormat is the UTC layout of Record.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05Z"

// Record is the metadata snapshot written for every checkpoint. Field names
// are read by other tooling and must not change.
type Record struct {
	Timestamp   string          `json:"timestamp"`
	Type        Category        `json:"type"`
	Message     string          `json:"message"`
	CommitHash  string          `json:"commitHash"`
	Branch      string          `json:"branch"`
	V3Progress  json.RawMessage `json:"v3Progress"`
	Performance json.RawMessage `json:"performance"`
	Security    json.RawMessage `json:"security"`
}
