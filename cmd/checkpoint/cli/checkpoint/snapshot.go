package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/jsonutil"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
)

const (
	// LatestFileName is overwritten by every checkpoint.
	LatestFileName = "latest-checkpoint.json"

	archivePrefix    = "checkpoint-"
	archiveSuffix    = ".json"
	archiveKeyFormat = "20060102-150405"

	// maxArchiveAttempts bounds the collision suffix search.
	maxArchiveAttempts = 10000
)

// Snapshotter captures and persists checkpoint records.
type Snapshotter struct {
	Dir               string
	MetricsDir        string
	SecurityAuditFile string
	Reader            MetricsReader
}

// ProgressPath is the location of the progress document.
func (s *Snapshotter) ProgressPath() string {
	return filepath.Join(s.MetricsDir, metrics.ProgressFile)
}

// Capture assembles a record for the current state at time now.
func (s *Snapshotter) Capture(category Category, message string, state State, now time.Time) *Record {
	return &Record{
		Timestamp:   now.UTC().Format(TimestampFormat),
		Type:        category,
		Message:     message,
		CommitHash:  state.HeadCommit,
		Branch:      state.BranchOrUnknown(),
		V3Progress:  s.Reader.ReadJSONOrDefault(s.ProgressPath()),
		Performance: s.Reader.ReadJSONOrDefault(filepath.Join(s.MetricsDir, metrics.PerformanceFile)),
		Security:    s.Reader.ReadJSONOrDefault(s.SecurityAuditFile),
	}
}

// Write persists rec as the latest record and as a new archive entry keyed by
// the local time of now. The two files are byte-identical. An existing
// archive with the same key is never overwritten; a numeric suffix is added
// instead.
func (s *Snapshotter) Write(ctx context.Context, rec *Record, now time.Time) (latestPath, archivePath string, err error) {
	data, err := jsonutil.MarshalIndentWithNewline(rec, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", "", fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	latestPath = filepath.Join(s.Dir, LatestFileName)
	//nolint:gosec // G306: checkpoint records are committed alongside the code
	if err := os.WriteFile(latestPath, data, 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write latest checkpoint: %w", err)
	}

	archivePath, err = s.writeArchive(data, now.Local().Format(archiveKeyFormat))
	if err != nil {
		return latestPath, "", err
	}

	logging.Debug(logging.WithComponent(ctx, "snapshot"), "checkpoint record written",
		slog.String("latest", latestPath),
		slog.String("archive", archivePath))
	return latestPath, archivePath, nil
}

func (s *Snapshotter) writeArchive(data []byte, key string) (string, error) {
	for seq := 0; seq < maxArchiveAttempts; seq++ {
		path := filepath.Join(s.Dir, archiveName(key, seq))
		//nolint:gosec // path is built from the checkpoint directory
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create archive checkpoint: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("failed to write archive checkpoint: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close archive checkpoint: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("failed to find a free archive name for key %s", key)
}

// archiveName returns checkpoint-<key>.json for seq 0 and
// checkpoint-<key>-<seq>.json afterwards.
func archiveName(key string, seq int) string {
	if seq == 0 {
		return archivePrefix + key + archiveSuffix
	}
	return archivePrefix + key + "-" + strconv.Itoa(seq) + archiveSuffix
}
