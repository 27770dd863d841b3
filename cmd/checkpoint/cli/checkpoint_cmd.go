package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/checkpoint"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addMessageFlag registers --message/-m, an alternative to the positional
// message argument.
func addMessageFlag(fs *pflag.FlagSet, target *string) {
	fs.StringVarP(target, "message", "m", "", "Checkpoint message (defaults to the category's standard message)")
}

// checkpointMessage prefers the flag and otherwise joins positional args.
func checkpointMessage(flag string, args []string) string {
	if flag != "" {
		return flag
	}
	return strings.TrimSpace(strings.Join(args, " "))
}

// newCategoryCmd builds the command for one checkpoint category.
func newCategoryCmd(c checkpoint.Category) *cobra.Command {
	var message string

	short := fmt.Sprintf("Record a %s checkpoint", c)
	long := fmt.Sprintf(`Record a %s checkpoint: snapshot progress metrics and commit pending changes.

Commits are prefixed with %q. Without a message, %q is used.`, c, c.CommitPrefix(), c.DefaultMessage())
	if c == checkpoint.SessionEnd {
		short = "Record the final checkpoint of a session"
		long = `Record the final checkpoint of a session.

Commits every pending change regardless of the configured threshold, pushes
everything that is unpushed and writes a one-line session summary.`
	}

	cmd := &cobra.Command{
		Use:   c.CommandName() + " [message]",
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckpoint(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), c, checkpointMessage(message, args))
		},
	}
	addMessageFlag(cmd.Flags(), &message)
	return cmd
}

// newDispatchCmd exposes category selection by name for hook scripts.
func newDispatchCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:    "dispatch <category> [message]",
		Short:  "Record a checkpoint of the named category",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Parsed before any I/O so an unknown category leaves no trace.
			c, err := checkpoint.ParseCategory(args[0])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Unknown checkpoint category %q. Valid categories: %s\n",
					args[0], strings.Join(categoryNames(), ", "))
				return NewExitError(ExitCodeUnknownCategory, NewSilentError(err))
			}
			return runCheckpoint(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), c, checkpointMessage(message, args[1:]))
		},
	}
	addMessageFlag(cmd.Flags(), &message)
	return cmd
}

func categoryNames() []string {
	cats := checkpoint.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}

func runCheckpoint(ctx context.Context, w, errW io.Writer, c checkpoint.Category, message string) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}
	if !sess.settings.Enabled {
		return nil
	}
	if !sess.inRepository() {
		fmt.Fprintln(w, "Not a git repository, nothing to checkpoint.")
		return nil
	}

	defer sess.startLogging(ctx)()

	res, err := sess.orchestrator().Run(ctx, c, message)
	if err != nil {
		return err
	}
	renderResult(w, sess.root, res)

	client := telemetry.NewClient(sess.settings.IsTelemetryEnabled(), Version)
	defer client.Close()
	client.TrackCheckpoint(telemetry.Event{
		Category: string(c),
		Recorded: !res.Skipped && res.SnapshotErr == nil,
		Commit:   string(res.Commit.Action),
		Push:     string(res.Push.Action),
	})
	return nil
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push all unpushed checkpoint commits now",
		Long: `Push every commit ahead of the upstream branch, ignoring the batch size
and the auto_push setting. A failed push is reported and retried on the
next checkpoint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPush(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runPush(ctx context.Context, w, errW io.Writer) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}
	if !sess.settings.Enabled {
		return nil
	}
	if !sess.inRepository() {
		fmt.Fprintln(w, "Not a git repository, nothing to push.")
		return nil
	}

	defer sess.startLogging(ctx)()

	outcome := sess.orchestrator().Push(ctx)
	renderOutcome(w, newOutputStyles(w), "Push", outcome)
	return nil
}

// renderResult prints one line per checkpoint step.
func renderResult(w io.Writer, root string, res *checkpoint.Result) {
	s := newOutputStyles(w)

	if res.Skipped {
		fmt.Fprintf(w, "%s Checkpoint skipped: %s\n", s.render(s.dim, "○"), res.SkipReason)
		return
	}

	if res.SnapshotErr != nil {
		fmt.Fprintf(w, "%s Snapshot failed: %v\n", s.render(s.red, "✕"), res.SnapshotErr)
	} else {
		fmt.Fprintf(w, "%s Checkpoint recorded: %s\n", s.render(s.green, "✓"), relativeTo(root, res.ArchivePath))
	}

	renderOutcome(w, s, "Commit", res.Commit)
	renderOutcome(w, s, "Push", res.Push)

	if res.SummaryPath != "" {
		fmt.Fprintf(w, "%s %s\n", s.render(s.green, "✓"), res.Summary)
	}
}

func renderOutcome(w io.Writer, s outputStyles, step string, o checkpoint.Outcome) {
	switch o.Action {
	case checkpoint.ActionCommitted:
		fmt.Fprintf(w, "%s Committed %s %s\n", s.render(s.green, "✓"), s.render(s.cyan, shortHash(o.Hash)), o.Reason)
	case checkpoint.ActionPushed:
		fmt.Fprintf(w, "%s Pushed %s\n", s.render(s.green, "✓"), o.Reason)
	case checkpoint.ActionFailed:
		fmt.Fprintf(w, "%s %s: %s\n", s.render(s.yellow, "!"), step, o.Reason)
	case checkpoint.ActionSkipped:
		fmt.Fprintf(w, "%s %s skipped: %s\n", s.render(s.dim, "○"), step, o.Reason)
	}
}

func relativeTo(root, p string) string {
	if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return p
}
