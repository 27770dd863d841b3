package checkpoint

import (
	"context"
	"encoding/json"
)

// Repository is the version-control gateway the policies act through.
type Repository interface {
	// ChangedFiles lists repository-relative paths differing from HEAD,
	// untracked files included.
	ChangedFiles(ctx context.Context) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)
	// Upstream returns the remote and remote branch tracked by branch.
	Upstream(ctx context.Context, branch string) (remote, remoteBranch string, err error)
	// AheadCount counts commits on branch not yet on its upstream.
	AheadCount(ctx context.Context, branch string) (int, error)
	HeadCommit(ctx context.Context) (string, error)
	StageAll(ctx context.Context) error
	Commit(ctx context.Context, message string) (string, error)
	Push(ctx context.Context, remote, remoteBranch string) error
}

// MetricsReader loads the external documents embedded in records.
type MetricsReader interface {
	// ReadJSONOrDefault never fails; unavailable documents read as {}.
	ReadJSONOrDefault(path string) json.RawMessage
}
