package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
)

const (
	// DomainTotal is the number of domains a session plan covers.
	DomainTotal = 5
	// AgentTotal is the size of the full agent swarm.
	AgentTotal = 15
)

// SummaryLine renders the one-line session summary.
func SummaryLine(at time.Time, p *metrics.Progress) string {
	return fmt.Sprintf("Session %s: domains %d/%d, agents %d/%d, %s%% complete",
		at.UTC().Format(TimestampFormat),
		p.Domains.Completed, DomainTotal,
		p.Swarm.ActiveAgents, AgentTotal,
		strconv.FormatFloat(p.DDD.Progress, 'f', -1, 64))
}

// WriteSummary writes line and a trailing newline to path.
func WriteSummary(path, line string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	//nolint:gosec // G306: plain-text report
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write session summary: %w", err)
	}
	return nil
}
