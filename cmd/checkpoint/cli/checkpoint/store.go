package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
)

// ErrNoCheckpoints is returned when no latest record exists yet.
var ErrNoCheckpoints = errors.New("no checkpoints recorded")

// Store reads persisted records. It never writes.
type Store struct {
	Dir string
}

// Entry is one archived record.
type Entry struct {
	Name   string
	Path   string
	Data   []byte
	Record *Record
}

// Latest returns the most recently written record.
func (s Store) Latest() (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, LatestFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoints
		}
		return nil, fmt.Errorf("failed to read latest checkpoint: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse latest checkpoint: %w", err)
	}
	return &rec, nil
}

// History returns up to limit archived records, newest first. Files that
// cannot be parsed are skipped. A limit of zero or less returns everything.
func (s Store) History(limit int) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	type keyed struct {
		name string
		key  string
		seq  int
	}
	var names []keyed
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		key, seq, ok := ParseArchiveName(de.Name())
		if !ok {
			continue
		}
		names = append(names, keyed{name: de.Name(), key: key, seq: seq})
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i].key != names[j].key {
			return names[i].key > names[j].key
		}
		return names[i].seq > names[j].seq
	})

	ctx := logging.WithComponent(context.Background(), "store")
	var out []Entry
	for _, n := range names {
		if limit > 0 && len(out) >= limit {
			break
		}
		path := filepath.Join(s.Dir, n.name)
		data, err := os.ReadFile(path) //nolint:gosec // path is inside the checkpoint directory
		if err != nil {
			logging.Debug(ctx, "skipping unreadable checkpoint", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			logging.Debug(ctx, "skipping malformed checkpoint", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		out = append(out, Entry{Name: n.name, Path: path, Data: data, Record: &rec})
	}
	return out, nil
}

// ParseArchiveName splits an archive file name into its time key and
// collision sequence number.
func ParseArchiveName(name string) (key string, seq int, ok bool) {
	if !strings.HasPrefix(name, archivePrefix) || !strings.HasSuffix(name, archiveSuffix) {
		return "", 0, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(name, archivePrefix), archiveSuffix)
	if len(body) < len(archiveKeyFormat) {
		return "", 0, false
	}
	key = body[:len(archiveKeyFormat)]
	if _, err := time.Parse(archiveKeyFormat, key); err != nil {
		return "", 0, false
	}
	rest := body[len(archiveKeyFormat):]
	if rest == "" {
		return key, 0, true
	}
	if !strings.HasPrefix(rest, "-") {
		return "", 0, false
	}
	seq, err := strconv.Atoi(rest[1:])
	if err != nil || seq < 1 {
		return "", 0, false
	}
	return key, seq, true
}

// Time parses the record timestamp.
func (r *Record) Time() (time.Time, error) {
	t, err := time.Parse(TimestampFormat, r.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid checkpoint timestamp %q: %w", r.Timestamp, err)
	}
	return t, nil
}
