package checkpoint

import (
	"context"
	"log/slog"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/paths"
)

// Unknown stands in for a commit hash or branch that could not be determined.
const Unknown = "unknown"

// State is a best-effort view of the repository at the start of a checkpoint.
type State struct {
	IsRepository bool
	// ChangedFileCount excludes the tool's own .checkpoint/ files.
	ChangedFileCount int
	// CurrentBranch is empty when HEAD is detached or unreadable.
	CurrentBranch string
	HasUpstream   bool
	CommitsAhead  int
	// HeadCommit is Unknown before the first commit.
	HeadCommit string
}

// Inspect queries repo for the checkpoint state. A nil repo means the caller
// is not inside a repository. Gateway errors never propagate: each value
// falls back to its zero default and the error is logged at debug level.
func Inspect(ctx context.Context, repo Repository) State {
	state := State{HeadCommit: Unknown}
	if repo == nil {
		return state
	}
	state.IsRepository = true
	ctx = logging.WithComponent(ctx, "inspector")

	if files, err := repo.ChangedFiles(ctx); err != nil {
		logging.Debug(ctx, "changed files unavailable", slog.String("error", err.Error()))
	} else {
		state.ChangedFileCount = countWorkFiles(files)
	}

	if hash, err := repo.HeadCommit(ctx); err != nil {
		logging.Debug(ctx, "head commit unavailable", slog.String("error", err.Error()))
	} else if hash != "" {
		state.HeadCommit = hash
	}

	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		logging.Debug(ctx, "current branch unavailable", slog.String("error", err.Error()))
		return state
	}
	state.CurrentBranch = branch

	if _, _, err := repo.Upstream(ctx, branch); err != nil {
		return state
	}
	state.HasUpstream = true

	if ahead, err := repo.AheadCount(ctx, branch); err != nil {
		logging.Debug(ctx, "ahead count unavailable", slog.String("error", err.Error()))
	} else {
		state.CommitsAhead = ahead
	}
	return state
}

// BranchOrUnknown returns the branch for records, Unknown when empty.
func (s State) BranchOrUnknown() string {
	if s.CurrentBranch == "" {
		return Unknown
	}
	return s.CurrentBranch
}

// countWorkFiles counts changed files outside the tool's own directory.
func countWorkFiles(files []string) int {
	n := 0
	for _, f := range files {
		if !paths.IsInfrastructurePath(f) {
			n++
		}
	}
	return n
}
