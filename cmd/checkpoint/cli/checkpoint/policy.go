package checkpoint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
)

// Action is what a policy did.
type Action string

const (
	ActionCommitted Action = "committed"
	ActionPushed    Action = "pushed"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
)

// Outcome reports a policy decision. Failures are carried here instead of
// being returned, so one failed step never aborts the rest of a checkpoint.
type Outcome struct {
	Action Action
	Reason string
	// Hash is the new commit for ActionCommitted.
	Hash string
	Err  error
}

func skipped(format string, args ...any) Outcome {
	return Outcome{Action: ActionSkipped, Reason: fmt.Sprintf(format, args...)}
}

// MeetsThreshold reports whether changed files reach the minimum threshold.
func MeetsThreshold(changedFiles, threshold int) bool {
	return changedFiles >= threshold
}

// ShouldPush reports whether commits ahead of upstream warrant a push.
func ShouldPush(commitsAhead, batchSize int, force bool) bool {
	return force || commitsAhead >= batchSize
}

// CommitPolicy decides whether to stage and commit.
type CommitPolicy struct {
	Repo                Repository
	Enabled             bool
	MinChangesThreshold int
	Trailer             string
}

// CommitRequest describes one commit attempt.
type CommitRequest struct {
	Category     Category
	Message      string
	ChangedFiles int
	// Force bypasses the Enabled switch. The threshold only applies to gated
	// categories and is not affected.
	Force bool
}

// Apply stages everything and commits when the request qualifies.
func (p CommitPolicy) Apply(ctx context.Context, req CommitRequest) Outcome {
	ctx = logging.WithComponent(ctx, "commit-policy")

	if req.Category.IsThresholdGated() && !MeetsThreshold(req.ChangedFiles, p.MinChangesThreshold) {
		return skipped("%d changed files, threshold is %d", req.ChangedFiles, p.MinChangesThreshold)
	}
	if !p.Enabled && !req.Force {
		return skipped("auto-commit disabled")
	}

	files, err := p.Repo.ChangedFiles(ctx)
	if err != nil {
		logging.Warn(ctx, "could not read working tree status", slog.String("error", err.Error()))
		return Outcome{Action: ActionFailed, Reason: "no changes or commit failed", Err: err}
	}
	// Record files alone do not count; StageAll still includes them when
	// real changes exist.
	workFiles := countWorkFiles(files)
	if workFiles == 0 {
		return skipped("no changes to commit")
	}

	if err := p.Repo.StageAll(ctx); err != nil {
		logging.Warn(ctx, "staging failed", slog.String("error", err.Error()))
		return Outcome{Action: ActionFailed, Reason: "no changes or commit failed", Err: err}
	}

	msg := FormatCommitMessage(req.Category, req.Message, p.Trailer)
	hash, err := p.Repo.Commit(ctx, msg)
	if err != nil {
		logging.Warn(ctx, "commit failed", slog.String("error", err.Error()))
		return Outcome{Action: ActionFailed, Reason: "no changes or commit failed", Err: err}
	}

	logging.Info(ctx, "checkpoint committed",
		slog.String("hash", hash),
		slog.Int("files", workFiles))
	return Outcome{Action: ActionCommitted, Reason: firstLine(msg), Hash: hash}
}

// PushPolicy decides whether to push accumulated commits.
type PushPolicy struct {
	Repo      Repository
	Enabled   bool
	BatchSize int
}

// Apply pushes when the branch is at least BatchSize commits ahead of its
// upstream, or unconditionally when force is set. A failed push is reported
// and left for the next checkpoint to retry.
func (p PushPolicy) Apply(ctx context.Context, force bool) Outcome {
	ctx = logging.WithComponent(ctx, "push-policy")

	branch, err := p.Repo.CurrentBranch(ctx)
	if err != nil || branch == "" {
		return skipped("no current branch")
	}
	remote, remoteBranch, err := p.Repo.Upstream(ctx, branch)
	if err != nil {
		return skipped("no upstream configured for %s", branch)
	}
	if !p.Enabled && !force {
		return skipped("auto-push disabled")
	}

	ahead, err := p.Repo.AheadCount(ctx, branch)
	if err != nil {
		logging.Debug(ctx, "ahead count unavailable", slog.String("error", err.Error()))
		ahead = 0
	}
	if !ShouldPush(ahead, p.BatchSize, force) {
		return skipped("%d unpushed commits, batch size is %d", ahead, p.BatchSize)
	}

	if err := p.Repo.Push(ctx, remote, remoteBranch); err != nil {
		logging.Warn(ctx, "push failed, next checkpoint will retry",
			slog.String("remote", remote),
			slog.String("branch", remoteBranch),
			slog.String("error", err.Error()))
		return Outcome{Action: ActionFailed, Reason: "push failed, will retry on next checkpoint", Err: err}
	}

	logging.Info(ctx, "pushed checkpoints",
		slog.String("remote", remote),
		slog.String("branch", remoteBranch),
		slog.Int("commits", ahead),
		slog.Bool("forced", force))
	return Outcome{Action: ActionPushed, Reason: fmt.Sprintf("%d commits to %s/%s", ahead, remote, remoteBranch)}
}
