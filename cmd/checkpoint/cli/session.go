package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/checkpoint"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/gitrepo"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/logging"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/metrics"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/paths"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/settings"
)

// session bundles what one command invocation needs: the repository (nil
// outside a git work tree), its root and the merged settings.
type session struct {
	repo     *gitrepo.Repo
	root     string
	settings *settings.Settings
}

// openSession locates the repository containing the working directory and
// loads its settings. Outside a repository it returns a session with a nil
// repo and default settings. Broken settings files are reported on errW and
// replaced by defaults so a checkpoint never blocks on configuration.
func openSession(errW io.Writer) (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	repo, err := gitrepo.Open(cwd)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNotRepository) {
			return &session{root: cwd, settings: settings.Default()}, nil
		}
		return nil, err
	}

	root := repo.Root()
	s, err := settings.Load()
	if err != nil {
		fmt.Fprintf(errW, "Warning: %v; using default settings\n", err)
		s = settings.Default()
	}

	return &session{repo: repo, root: root, settings: s}, nil
}

func (s *session) inRepository() bool {
	return s.repo != nil
}

// config converts settings into orchestrator configuration with paths
// resolved against the repository root.
func (s *session) config() checkpoint.Config {
	st := s.settings
	return checkpoint.Config{
		AutoCommitEnabled:   st.AutoCommit,
		AutoPushEnabled:     st.AutoPush,
		PushBatchSize:       st.PushBatchSize,
		MinChangesThreshold: st.MinChangesThreshold,
		CheckpointDir:       paths.ResolveIn(s.root, st.CheckpointDir),
		MetricsDir:          paths.ResolveIn(s.root, st.MetricsDir),
		SecurityAuditFile:   paths.ResolveIn(s.root, st.SecurityAuditFile),
		SummaryFile:         paths.ResolveIn(s.root, st.SummaryFile),
		CommitTrailer:       st.CommitTrailer,
	}
}

// repository returns the gateway, keeping a nil *gitrepo.Repo out of the
// interface.
func (s *session) repository() checkpoint.Repository {
	if s.repo == nil {
		return nil
	}
	return s.repo
}

func (s *session) orchestrator(opts ...checkpoint.Option) *checkpoint.Orchestrator {
	return checkpoint.NewOrchestrator(s.config(), s.repository(), metrics.FileReader{}, opts...)
}

func (s *session) store() checkpoint.Store {
	return checkpoint.Store{Dir: paths.ResolveIn(s.root, s.settings.CheckpointDir)}
}

// startLogging keeps tool-private files out of commits, then opens the log
// file under the repository root. Failures here never abort the command.
func (s *session) startLogging(ctx context.Context) func() {
	st := s.settings
	logging.SetLogLevelGetter(func() string { return st.LogLevel })
	if err := logging.Init(paths.ResolveIn(s.root, paths.LogsDir)); err != nil {
		logging.Warn(ctx, "file logging unavailable", slog.String("error", err.Error()))
	}
	if err := paths.EnsureGitignore(s.root); err != nil {
		logging.Warn(ctx, "failed to update checkpoint .gitignore", slog.String("error", err.Error()))
	}
	return logging.Close
}
