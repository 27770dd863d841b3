package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treeSnapshot lists every file under dir with its size, for detecting
// writes.
func treeSnapshot(t *testing.T, dir string) map[string]int64 {
	t.Helper()
	files := make(map[string]int64)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && info.Name() == ".git" {
			return filepath.SkipDir
		}
		if !info.IsDir() {
			files[path] = info.Size()
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

func TestStatus_NoCheckpoints(t *testing.T) {
	setupRepo(t)

	out, _, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoints recorded yet.")
}

func TestStatus_ShowsLatestWithoutWriting(t *testing.T) {
	dir, repo := setupRepo(t)
	writeTestFile(t, dir, "api.go", "package api\n")
	_, _, err := execute(t, "security-checkpoint", "rotated keys")
	require.NoError(t, err)

	head := headCommit(t, repo).Hash
	before := treeSnapshot(t, dir)

	out, _, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "security rotated keys")
	assert.Contains(t, out, "Branch:")

	assert.Equal(t, before, treeSnapshot(t, dir))
	assert.Equal(t, head, headCommit(t, repo).Hash)

	wt, err := repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean(), "status must leave the work tree untouched: %v", status)
}

func TestStatus_OutsideRepository(t *testing.T) {
	t.Chdir(t.TempDir())

	out, _, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not a git repository.")
}

func TestWriteRecord(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	rec := &checkpoint.Record{
		Timestamp:   "2026-10-15T09:30:00Z",
		Type:        checkpoint.Milestone,
		Message:     "v1 shipped\nwith details",
		CommitHash:  "abcdef0123456789",
		Branch:      "main",
		V3Progress:  []byte(`{"ddd":{"progress":100}}`),
		Performance: []byte(`{}`),
		Security:    []byte(`{}`),
	}

	var buf bytes.Buffer
	now := time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)
	writeRecord(&buf, newOutputStyles(&buf), rec, now)

	out := buf.String()
	assert.Contains(t, out, "milestone v1 shipped\n")
	assert.Contains(t, out, "2026-10-15T09:30:00Z (1 hour ago)")
	assert.Contains(t, out, "abcdef0")
	assert.NotContains(t, out, "abcdef01")
	assert.Contains(t, out, `{"ddd":{"progress":100}}`)
}

