package metrics

import (
	"encoding/json"
	"fmt"
)

// Progress is the subset of the progress document used for session summaries.
type Progress struct {
	Domains struct {
		Completed int `json:"completed"`
	} `json:"domains"`
	Swarm struct {
		ActiveAgents int `json:"activeAgents"`
	} `json:"swarm"`
	DDD struct {
		Progress float64 `json:"progress"`
	} `json:"ddd"`
}

// ParseProgress decodes a progress document. Missing keys decode as zero.
func ParseProgress(doc json.RawMessage) (*Progress, error) {
	var p Progress
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("parsing progress document: %w", err)
	}
	return &p, nil
}
