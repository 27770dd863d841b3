// Package redact removes secrets from free text before it is written to
// checkpoint records or commit messages. Detection uses the gitleaks default
// rule set; the detector is built once per process.
package redact

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
	"github.com/zricethezav/gitleaks/v8/detect"
)

// Placeholder replaces every detected secret.
const Placeholder = "REDACTED"

var (
	detectorOnce sync.Once
	detector     *detect.Detector
	detectorErr  error
)

func getDetector() (*detect.Detector, error) {
	detectorOnce.Do(func() {
		detector, detectorErr = detect.NewDetectorDefaultConfig()
	})
	return detector, detectorErr
}

// String returns s with every detected secret replaced by Placeholder.
// If the detector cannot be built, s is returned unchanged.
func String(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	d, err := getDetector()
	if err != nil {
		logging.Warn(logging.WithComponent(context.Background(), "redact"),
			"secret detector unavailable", slog.String("error", err.Error()))
		return s
	}

	findings := d.DetectString(s)
	if len(findings) == 0 {
		return s
	}

	secrets := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Secret != "" {
			secrets = append(secrets, f.Secret)
		}
	}
	// Longest first so a secret that contains another is replaced whole.
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	return s
}
