// Package metrics reads the externally maintained JSON documents that
// checkpoints embed: session progress, performance metrics and the security
// audit status. The documents are owned by other tooling; this package only
// reads them and never fails because one is absent.
package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
)

const (
	// ProgressFile is the progress document inside the metrics directory.
	ProgressFile = "v3-progress.json"
	// PerformanceFile is the performance document inside the metrics directory.
	PerformanceFile = "performance.json"
)

// EmptyDocument is substituted for any document that cannot be read.
var EmptyDocument = json.RawMessage(`{}`)

// FileReader reads documents from the local filesystem.
type FileReader struct{}

// ReadJSONOrDefault returns the compacted JSON stored at path, or
// EmptyDocument when the file is missing, unreadable or not valid JSON.
func (FileReader) ReadJSONOrDefault(path string) json.RawMessage {
	ctx := logging.WithComponent(context.Background(), "metrics")

	data, err := os.ReadFile(path) //nolint:gosec // path comes from settings
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn(ctx, "metrics document unreadable",
				slog.String("path", path), slog.String("error", err.Error()))
		}
		return EmptyDocument
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		logging.Warn(ctx, "metrics document is not valid JSON",
			slog.String("path", path), slog.String("error", err.Error()))
		return EmptyDocument
	}
	if buf.Len() == 0 {
		return EmptyDocument
	}
	return json.RawMessage(buf.Bytes())
}
