// Package gitrepo is the repository gateway used by checkpoints. Reads,
// staging and commits go through go-git; pushes shell out to the git binary
// so that the user's credential helpers and SSH configuration apply.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a git work tree opened for checkpointing.
type Repo struct {
	repo      *git.Repository
	root      string
	gitBinary string
}

// Open opens the repository containing dir, searching parent directories.
// Returns ErrNotRepository when dir is not inside a work tree.
func Open(dir string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ErrNotRepository
	}
	return &Repo{repo: repo, root: wt.Filesystem.Root(), gitBinary: "git"}, nil
}

// Root returns the absolute work tree root.
func (r *Repo) Root() string {
	return r.root
}

// ChangedFiles returns the sorted paths that differ from HEAD in the index or
// the work tree, untracked files included and ignored files excluded.
func (r *Repo) ChangedFiles(_ context.Context) ([]string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	files := make([]string, 0, len(status))
	for file, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

// CurrentBranch returns the short name of the checked-out branch. An unborn
// branch (no commits yet) is still reported by name.
func (r *Repo) CurrentBranch(_ context.Context) (string, error) {
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Target().Short(), nil
}

// HeadCommit returns the full hash of the commit HEAD resolves to.
func (r *Repo) HeadCommit(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// Upstream returns the remote name and remote branch tracked by branch.
// A remote of "." means the upstream is another local branch.
func (r *Repo) Upstream(_ context.Context, branch string) (remote, remoteBranch string, err error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", "", fmt.Errorf("failed to read git config: %w", err)
	}
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", "", ErrNoUpstream
	}
	return b.Remote, b.Merge.Short(), nil
}

// AheadCount returns the number of commits reachable from branch that are not
// reachable from its upstream tracking ref.
func (r *Repo) AheadCount(ctx context.Context, branch string) (int, error) {
	remote, remoteBranch, err := r.Upstream(ctx, branch)
	if err != nil {
		return 0, err
	}

	localRef, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve branch %s: %w", branch, err)
	}
	upRef, err := r.repo.Reference(trackingRefName(remote, remoteBranch), true)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve upstream of %s: %w", branch, err)
	}
	if localRef.Hash() == upRef.Hash() {
		return 0, nil
	}

	upCommit, err := r.repo.CommitObject(upRef.Hash())
	if err != nil {
		return 0, fmt.Errorf("failed to load upstream commit: %w", err)
	}
	localCommit, err := r.repo.CommitObject(localRef.Hash())
	if err != nil {
		return 0, fmt.Errorf("failed to load branch commit: %w", err)
	}

	upstreamHistory := make(map[plumbing.Hash]bool)
	err = object.NewCommitPreorderIter(upCommit, nil, nil).ForEach(func(c *object.Commit) error {
		upstreamHistory[c.Hash] = true
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk upstream history: %w", err)
	}

	ahead := 0
	err = object.NewCommitPreorderIter(localCommit, upstreamHistory, nil).ForEach(func(*object.Commit) error {
		ahead++
		return ctx.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to walk branch history: %w", err)
	}
	return ahead, nil
}

func trackingRefName(remote, remoteBranch string) plumbing.ReferenceName {
	if remote == "." {
		return plumbing.NewBranchReferenceName(remoteBranch)
	}
	return plumbing.NewRemoteReferenceName(remote, remoteBranch)
}

// StageAll stages every change in the work tree, deletions included
// (equivalent to `git add -A`).
func (r *Repo) StageAll(_ context.Context) error {
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}
	return nil
}

// Commit records the index as a new commit and returns its hash. Author and
// committer come from the git configuration. Returns ErrNothingToCommit when
// the index matches HEAD.
func (r *Repo) Commit(_ context.Context, message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	hash, err := wt.Commit(message, &git.CommitOptions{})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNothingToCommit
		}
		return "", fmt.Errorf("failed to commit: %w", err)
	}
	return hash.String(), nil
}
