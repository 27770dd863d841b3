package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/paths"
)

var (
	// ErrNotRepository indicates the directory is not inside a git work tree.
	ErrNotRepository = paths.ErrNotRepository

	// ErrNoUpstream indicates the branch has no configured upstream.
	ErrNoUpstream = errors.New("no upstream configured")

	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrNothingToCommit indicates the index matches HEAD.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrGitOperationFailed is wrapped by every GitError.
	ErrGitOperationFailed = errors.New("git operation failed")
)

// GitError describes a failed git subprocess, keeping its stderr for the log.
type GitError struct {
	Operation string
	Args      []string
	Output    string
	Err       error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Operation)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrGitOperationFailed) match any GitError.
func (e *GitError) Is(target error) bool {
	return target == ErrGitOperationFailed
}
