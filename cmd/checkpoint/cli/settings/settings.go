// Package settings provides configuration loading for the checkpoint tool.
// This package is separate from cli so the lower layers can share the
// defaults without importing the command tree.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/jsonutil"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/paths"
)

const (
	// SettingsFile is the path to the project settings file.
	SettingsFile = paths.CheckpointRoot + "/" + paths.SettingsFileName
	// SettingsLocalFile is the path to the local override file (not committed).
	SettingsLocalFile = paths.CheckpointRoot + "/" + paths.LocalSettingsFileName
)

// Defaults applied before any file is read.
const (
	DefaultPushBatchSize       = 5
	DefaultMinChangesThreshold = 1
	DefaultCheckpointDir       = paths.CheckpointRoot + "/checkpoints"
	DefaultMetricsDir          = paths.CheckpointRoot + "/metrics"
	DefaultSecurityAuditFile   = paths.CheckpointRoot + "/security/audit-status.json"
	DefaultSummaryFile         = paths.CheckpointRoot + "/last-session-summary.txt"
	DefaultCommitTrailer       = "Generated-By: checkpoint"
)

// ErrInvalidSettings is wrapped by Validate failures.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings represents .checkpoint/settings.json.
type Settings struct {
	// Enabled turns every checkpoint command into a silent no-op when false.
	Enabled bool `json:"enabled"`

	// AutoCommit allows checkpoints to stage and commit. Session end commits
	// regardless.
	AutoCommit bool `json:"auto_commit"`

	// AutoPush allows batched pushes. Forced pushes (push command, session
	// end) ignore it.
	AutoPush bool `json:"auto_push"`

	// PushBatchSize is the number of unpushed commits that triggers a push.
	PushBatchSize int `json:"push_batch_size"`

	// MinChangesThreshold is the number of changed files an auto checkpoint
	// needs before it records anything.
	MinChangesThreshold int `json:"min_changes_threshold"`

	CheckpointDir     string `json:"checkpoint_dir,omitempty"`
	MetricsDir        string `json:"metrics_dir,omitempty"`
	SecurityAuditFile string `json:"security_audit_file,omitempty"`
	SummaryFile       string `json:"summary_file,omitempty"`

	// CommitTrailer is appended after a blank line to every checkpoint commit.
	CommitTrailer string `json:"commit_trailer,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// CHECKPOINT_LOG_LEVEL takes precedence.
	LogLevel string `json:"log_level,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = never decided (treated as off), true = opted in, false = opted out
	Telemetry *bool `json:"telemetry,omitempty"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	return &Settings{
		Enabled:             true,
		AutoCommit:          true,
		AutoPush:            true,
		PushBatchSize:       DefaultPushBatchSize,
		MinChangesThreshold: DefaultMinChangesThreshold,
		CheckpointDir:       DefaultCheckpointDir,
		MetricsDir:          DefaultMetricsDir,
		SecurityAuditFile:   DefaultSecurityAuditFile,
		SummaryFile:         DefaultSummaryFile,
		CommitTrailer:       DefaultCommitTrailer,
	}
}

// Load loads .checkpoint/settings.json, then applies overrides from
// .checkpoint/settings.local.json if it exists.
// Returns default settings if neither file exists.
func Load() (*Settings, error) {
	settingsFileAbs, err := paths.AbsPath(SettingsFile)
	if err != nil {
		settingsFileAbs = SettingsFile // Fallback to relative
	}
	localSettingsFileAbs, err := paths.AbsPath(SettingsLocalFile)
	if err != nil {
		localSettingsFileAbs = SettingsLocalFile
	}
	return LoadPair(settingsFileAbs, localSettingsFileAbs)
}

// LoadPair loads a project file and merges a local override file on top.
func LoadPair(projectFile, localFile string) (*Settings, error) {
	s, err := LoadFromFile(projectFile)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	localData, err := os.ReadFile(localFile) //nolint:gosec // path is from AbsPath or constant
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading local settings file: %w", err)
		}
	} else if err := mergeJSON(s, localData); err != nil {
		return nil, fmt.Errorf("merging local settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromFile loads settings from a single file without merging overrides.
// Returns default settings if the file doesn't exist.
func LoadFromFile(filePath string) (*Settings, error) {
	s := Default()

	data, err := os.ReadFile(filePath) //nolint:gosec // path is from caller
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("%w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return s, nil
}

// mergeJSON overlays the keys present in data onto s. Empty strings do not
// clear a value set by the project file.
func mergeJSON(s *Settings, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var overlay Settings
	if err := dec.Decode(&overlay); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}

	if _, ok := raw["enabled"]; ok {
		s.Enabled = overlay.Enabled
	}
	if _, ok := raw["auto_commit"]; ok {
		s.AutoCommit = overlay.AutoCommit
	}
	if _, ok := raw["auto_push"]; ok {
		s.AutoPush = overlay.AutoPush
	}
	if _, ok := raw["push_batch_size"]; ok {
		s.PushBatchSize = overlay.PushBatchSize
	}
	if _, ok := raw["min_changes_threshold"]; ok {
		s.MinChangesThreshold = overlay.MinChangesThreshold
	}
	if _, ok := raw["telemetry"]; ok {
		s.Telemetry = overlay.Telemetry
	}

	overrideString(&s.CheckpointDir, overlay.CheckpointDir)
	overrideString(&s.MetricsDir, overlay.MetricsDir)
	overrideString(&s.SecurityAuditFile, overlay.SecurityAuditFile)
	overrideString(&s.SummaryFile, overlay.SummaryFile)
	overrideString(&s.CommitTrailer, overlay.CommitTrailer)
	overrideString(&s.LogLevel, overlay.LogLevel)
	return nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate rejects values the checkpoint policies cannot work with.
func (s *Settings) Validate() error {
	if s.PushBatchSize < 1 {
		return fmt.Errorf("%w: push_batch_size must be at least 1, got %d", ErrInvalidSettings, s.PushBatchSize)
	}
	if s.MinChangesThreshold < 0 {
		return fmt.Errorf("%w: min_changes_threshold must not be negative, got %d", ErrInvalidSettings, s.MinChangesThreshold)
	}
	return nil
}

// IsTelemetryEnabled reports whether the user explicitly opted in.
func (s *Settings) IsTelemetryEnabled() bool {
	return s.Telemetry != nil && *s.Telemetry
}

// SaveLocal saves the settings to .checkpoint/settings.local.json.
func SaveLocal(s *Settings) error {
	return saveToFile(s, SettingsLocalFile)
}

func saveToFile(s *Settings, filePath string) error {
	filePathAbs, err := paths.AbsPath(filePath)
	if err != nil {
		filePathAbs = filePath // Fallback to relative
	}

	if err := os.MkdirAll(filepath.Dir(filePathAbs), 0o750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	data, err := jsonutil.MarshalIndentWithNewline(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}

	//nolint:gosec // G306: settings file is config, not secrets; 0o644 is appropriate
	if err := os.WriteFile(filePathAbs, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}
