package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
)

func TestSummaryLine(t *testing.T) {
	p := &metrics.Progress{}
	p.Domains.Completed = 5
	p.Swarm.ActiveAgents = 15
	p.DDD.Progress = 97.5

	got := SummaryLine(fixedNow, p)
	assert.Equal(t, "Session 2026-10-15T09:30:00Z: domains 5/5, agents 15/15, 97.5% complete", got)

	assert.Equal(t, "Session 2026-10-15T09:30:00Z: domains 0/5, agents 0/15, 0% complete",
		SummaryLine(fixedNow, &metrics.Progress{}))
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last-session-summary.txt")
	require.NoError(t, WriteSummary(path, "line"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}
