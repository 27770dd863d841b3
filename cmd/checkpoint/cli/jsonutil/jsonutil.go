// Package jsonutil holds the JSON encoding conventions shared by every file
// the checkpoint tool writes.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// MarshalIndentWithNewline marshals v with indentation and appends a trailing
// newline so written files end the way editors and git expect.
func MarshalIndentWithNewline(v any, prefix, indent string) ([]byte, error) {
	data, err := json.MarshalIndent(v, prefix, indent)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return append(data, '\n'), nil
}
