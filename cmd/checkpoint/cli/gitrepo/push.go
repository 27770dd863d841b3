package gitrepo

import (
	"bytes"
	"context"
	"os/exec"
)

// Push updates remoteBranch on remote with the current HEAD.
func (r *Repo) Push(ctx context.Context, remote, remoteBranch string) error {
	args := []string{"push", remote, "HEAD:refs/heads/" + remoteBranch}
	if _, err := r.run(ctx, args...); err != nil {
		return err
	}
	return nil
}

// run executes git in the work tree root and returns stdout. Failures are
// reported as *GitError carrying stderr.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gitBinary, args...) //nolint:gosec // args are built internally
	cmd.Dir = r.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		op := ""
		if len(args) > 0 {
			op = args[0]
		}
		return "", &GitError{Operation: op, Args: args, Output: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}
