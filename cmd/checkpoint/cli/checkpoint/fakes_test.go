package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
)

var errFake = fmt.Errorf("fake failure")

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	changed    []string
	changedErr error

	branch    string
	branchErr error

	remote       string
	remoteBranch string
	upstreamErr  error

	ahead    int
	aheadErr error

	head    string
	headErr error

	stageErr  error
	commitErr error
	pushErr   error

	stageCalls int
	commits    []string
	pushes     []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		branch:       "main",
		remote:       "origin",
		remoteBranch: "main",
		head:         "1111111111111111111111111111111111111111",
	}
}

func (f *fakeRepo) ChangedFiles(context.Context) ([]string, error) {
	return f.changed, f.changedErr
}

func (f *fakeRepo) CurrentBranch(context.Context) (string, error) {
	return f.branch, f.branchErr
}

func (f *fakeRepo) Upstream(context.Context, string) (string, string, error) {
	if f.upstreamErr != nil {
		return "", "", f.upstreamErr
	}
	return f.remote, f.remoteBranch, nil
}

func (f *fakeRepo) AheadCount(context.Context, string) (int, error) {
	return f.ahead, f.aheadErr
}

func (f *fakeRepo) HeadCommit(context.Context) (string, error) {
	return f.head, f.headErr
}

func (f *fakeRepo) StageAll(context.Context) error {
	f.stageCalls++
	return f.stageErr
}

func (f *fakeRepo) Commit(_ context.Context, message string) (string, error) {
	if f.commitErr != nil {
		return "", f.commitErr
	}
	f.commits = append(f.commits, message)
	f.changed = nil
	f.ahead++
	f.head = fmt.Sprintf("%040d", len(f.commits)+1)
	return f.head, nil
}

func (f *fakeRepo) Push(_ context.Context, remote, remoteBranch string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, remote+"/"+remoteBranch)
	f.ahead = 0
	return nil
}

// fakeReader serves documents from memory; unknown paths read as {}.
type fakeReader map[string]string

func (r fakeReader) ReadJSONOrDefault(path string) json.RawMessage {
	if doc, ok := r[path]; ok {
		return json.RawMessage(doc)
	}
	return metrics.EmptyDocument
}

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func noRedact(s string) string { return s }
