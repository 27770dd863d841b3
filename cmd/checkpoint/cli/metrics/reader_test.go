package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONOrDefault(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte("{\n  \"score\": 91,\n  \"tags\": [\"a\"]\n}\n"), 0o644))
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte("{not json"), 0o644))
	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"valid document is compacted", valid, `{"score":91,"tags":["a"]}`},
		{"missing file", filepath.Join(dir, "missing.json"), `{}`},
		{"invalid JSON", invalid, `{}`},
		{"empty file", empty, `{}`},
		{"directory instead of file", dir, `{}`},
	}

	var r FileReader
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(r.ReadJSONOrDefault(tt.path)))
		})
	}
}

func TestParseProgress(t *testing.T) {
	p, err := ParseProgress([]byte(`{"domains":{"completed":3},"swarm":{"activeAgents":12},"ddd":{"progress":62.5},"extra":true}`))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Domains.Completed)
	assert.Equal(t, 12, p.Swarm.ActiveAgents)
	assert.InDelta(t, 62.5, p.DDD.Progress, 0.001)

	p, err = ParseProgress(EmptyDocument)
	require.NoError(t, err)
	assert.Zero(t, p.Domains.Completed)

	_, err = ParseProgress([]byte(`[1,2]`))
	assert.Error(t, err)
}
