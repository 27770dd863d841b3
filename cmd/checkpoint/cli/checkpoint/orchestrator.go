package checkpoint

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/redact"
)

// Config holds the knobs of the checkpoint policies. Paths are absolute.
type Config struct {
	AutoCommitEnabled   bool
	AutoPushEnabled     bool
	PushBatchSize       int
	MinChangesThreshold int

	CheckpointDir     string
	MetricsDir        string
	SecurityAuditFile string
	SummaryFile       string
	CommitTrailer     string
}

// Result describes everything one checkpoint run did.
type Result struct {
	Category Category
	State    State

	// Skipped is set when nothing was recorded at all.
	Skipped    bool
	SkipReason string

	Record      *Record
	LatestPath  string
	ArchivePath string
	SnapshotErr error

	Commit Outcome
	Push   Outcome

	Summary     string
	SummaryPath string
}

// Orchestrator runs checkpoints. It keeps no state between runs; continuity
// lives in the repository and the checkpoint directory.
type Orchestrator struct {
	cfg    Config
	repo   Repository
	reader MetricsReader
	now    func() time.Time
	redact func(string) string
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithRedactor replaces the secret redaction applied to messages.
func WithRedactor(f func(string) string) Option {
	return func(o *Orchestrator) { o.redact = f }
}

// NewOrchestrator builds an orchestrator. repo is nil when the caller is not
// inside a repository; every run then succeeds without doing anything.
func NewOrchestrator(cfg Config, repo Repository, reader MetricsReader, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		repo:   repo,
		reader: reader,
		now:    time.Now,
		redact: redact.String,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Config returns the configuration the orchestrator was built with.
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Inspect returns the current repository state.
func (o *Orchestrator) Inspect(ctx context.Context) State {
	return Inspect(ctx, o.repo)
}

func (o *Orchestrator) snapshotter() *Snapshotter {
	return &Snapshotter{
		Dir:               o.cfg.CheckpointDir,
		MetricsDir:        o.cfg.MetricsDir,
		SecurityAuditFile: o.cfg.SecurityAuditFile,
		Reader:            o.reader,
	}
}

// Run takes one checkpoint of the given category. Only an unknown category
// is an error; every other failure is reported in the Result.
func (o *Orchestrator) Run(ctx context.Context, category Category, message string) (*Result, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, string(category))
	}
	ctx = logging.WithCategory(logging.WithComponent(ctx, "orchestrator"), string(category))

	state := Inspect(ctx, o.repo)
	res := &Result{Category: category, State: state}
	if !state.IsRepository {
		res.Skipped = true
		res.SkipReason = "not a git repository"
		logging.Debug(ctx, "skipping checkpoint outside a repository")
		return res, nil
	}

	if message == "" {
		message = category.DefaultMessage()
	}
	message = o.redact(message)

	if category.IsThresholdGated() && !MeetsThreshold(state.ChangedFileCount, o.cfg.MinChangesThreshold) {
		res.Skipped = true
		res.SkipReason = fmt.Sprintf("%d changed files, threshold is %d", state.ChangedFileCount, o.cfg.MinChangesThreshold)
		logging.Info(ctx, "checkpoint below threshold",
			slog.Int("changed_files", state.ChangedFileCount),
			slog.Int("threshold", o.cfg.MinChangesThreshold))
		return res, nil
	}

	now := o.now()
	snap := o.snapshotter()
	res.Record = snap.Capture(category, message, state, now)
	res.LatestPath, res.ArchivePath, res.SnapshotErr = snap.Write(ctx, res.Record, now)
	if res.SnapshotErr != nil {
		logging.Warn(ctx, "failed to write checkpoint record", slog.String("error", res.SnapshotErr.Error()))
	}

	forced := category.IsForced()
	res.Commit = CommitPolicy{
		Repo:                o.repo,
		Enabled:             o.cfg.AutoCommitEnabled,
		MinChangesThreshold: o.cfg.MinChangesThreshold,
		Trailer:             o.cfg.CommitTrailer,
	}.Apply(ctx, CommitRequest{
		Category:     category,
		Message:      message,
		ChangedFiles: state.ChangedFileCount,
		Force:        forced,
	})

	res.Push = o.pushPolicy().Apply(ctx, forced)

	if category == SessionEnd {
		o.writeSessionSummary(ctx, snap, res, now)
	}

	logging.Info(ctx, "checkpoint complete",
		slog.String("commit", string(res.Commit.Action)),
		slog.String("push", string(res.Push.Action)),
		slog.String("archive", res.ArchivePath))
	return res, nil
}

// Push pushes any unpushed commits regardless of the batch size.
func (o *Orchestrator) Push(ctx context.Context) Outcome {
	if o.repo == nil {
		return skipped("not a git repository")
	}
	return o.pushPolicy().Apply(logging.WithComponent(ctx, "orchestrator"), true)
}

func (o *Orchestrator) pushPolicy() PushPolicy {
	return PushPolicy{Repo: o.repo, Enabled: o.cfg.AutoPushEnabled, BatchSize: o.cfg.PushBatchSize}
}

// writeSessionSummary derives the summary line from the progress document
// when one exists. Failures only produce a warning.
func (o *Orchestrator) writeSessionSummary(ctx context.Context, snap *Snapshotter, res *Result, now time.Time) {
	if _, err := os.Stat(snap.ProgressPath()); err != nil {
		return
	}
	progress, err := metrics.ParseProgress(o.reader.ReadJSONOrDefault(snap.ProgressPath()))
	if err != nil {
		logging.Warn(ctx, "progress document unusable for summary", slog.String("error", err.Error()))
		return
	}
	line := SummaryLine(now, progress)
	if err := WriteSummary(o.cfg.SummaryFile, line); err != nil {
		logging.Warn(ctx, "failed to write session summary", slog.String("error", err.Error()))
		return
	}
	res.Summary = line
	res.SummaryPath = o.cfg.SummaryFile
}
