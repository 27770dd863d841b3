package checkpoint

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchiveName(t *testing.T) {
	tests := []struct {
		name    string
		wantKey string
		wantSeq int
		wantOK  bool
	}{
		{"checkpoint-20261015-093000.json", "20261015-093000", 0, true},
		{"checkpoint-20261015-093000-3.json", "20261015-093000", 3, true},
		{"latest-checkpoint.json", "", 0, false},
		{"checkpoint-20261015-093000-0.json", "", 0, false},
		{"checkpoint-20261015-093000-x.json", "", 0, false},
		{"checkpoint-20261015-093000.txt", "", 0, false},
		{"checkpoint-2026.json", "", 0, false},
		{"checkpoint-20261399-093000.json", "", 0, false},
		{"checkpoint-20261015-093000_2.json", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, seq, ok := ParseArchiveName(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantSeq, seq)
		})
	}
}

func TestStore_LatestMissing(t *testing.T) {
	_, err := Store{Dir: t.TempDir()}.Latest()
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}

func TestStore_RoundTrip(t *testing.T) {
	snap := newTestSnapshotter(t, nil)
	snap.Reader = fakeReader{
		snap.ProgressPath(): `{"domains":{"completed":4},"ddd":{"progress":80}}`,
		filepath.Join(snap.MetricsDir, "performance.json"): `{"p95":120}`,
	}
	written := snap.Capture(Milestone, "Domain model complete", State{CurrentBranch: "main", HeadCommit: "abc123"}, fixedNow)
	_, _, err := snap.Write(context.Background(), written, fixedNow)
	require.NoError(t, err)

	read, err := Store{Dir: snap.Dir}.Latest()
	require.NoError(t, err)

	// Compare through a generic decode so raw JSON formatting does not matter.
	var want, got map[string]any
	wantData, err := json.Marshal(written)
	require.NoError(t, err)
	gotData, err := json.Marshal(read)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(wantData, &want))
	require.NoError(t, json.Unmarshal(gotData, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record round trip mismatch (-written +read):\n%s", diff)
	}

	ts, err := read.Time()
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixedNow))
}

func TestStore_HistoryOrderAndLimit(t *testing.T) {
	snap := newTestSnapshotter(t, fakeReader{})
	ctx := context.Background()

	times := []time.Time{
		fixedNow.Add(-2 * time.Hour),
		fixedNow,
		fixedNow.Add(-1 * time.Hour),
		fixedNow, // collides with the second write
	}
	for i, ts := range times {
		rec := snap.Capture(Agent, "msg-"+string(rune('a'+i)), State{}, ts)
		_, _, err := snap.Write(ctx, rec, ts)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(snap.Dir, "checkpoint-20200101-000000.json"), []byte("{broken"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(snap.Dir, "notes.txt"), []byte("ignore me"), 0o644))

	entries, err := Store{Dir: snap.Dir}.History(0)
	require.NoError(t, err)
	var msgs []string
	for _, e := range entries {
		msgs = append(msgs, e.Record.Message)
	}
	assert.Equal(t, []string{"msg-d", "msg-b", "msg-c", "msg-a"}, msgs)

	entries, err = Store{Dir: snap.Dir}.History(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "msg-d", entries[0].Record.Message)
}

func TestStore_HistoryMissingDir(t *testing.T) {
	entries, err := Store{Dir: filepath.Join(t.TempDir(), "nope")}.History(5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ReadsNeverMutate(t *testing.T) {
	snap := newTestSnapshotter(t, fakeReader{})
	rec := snap.Capture(Agent, "m", State{}, fixedNow)
	_, _, err := snap.Write(context.Background(), rec, fixedNow)
	require.NoError(t, err)

	before := dirSnapshot(t, snap.Dir)
	store := Store{Dir: snap.Dir}
	_, err = store.Latest()
	require.NoError(t, err)
	_, err = store.History(5)
	require.NoError(t, err)
	assert.Equal(t, before, dirSnapshot(t, snap.Dir))
}

// dirSnapshot maps file names to contents and modification times.
func dirSnapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		info, err := e.Info()
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = info.ModTime().String() + "|" + string(data)
	}
	return out
}
