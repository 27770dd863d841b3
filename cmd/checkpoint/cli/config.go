package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/settings"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newConfigCmd() *cobra.Command {
	var edit bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective checkpoint configuration",
		Long: `Show the effective configuration after merging .checkpoint/settings.json
with .checkpoint/settings.local.json, along with the current number of
unpushed commits.

With --edit, open an interactive form and save the result to
.checkpoint/settings.local.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if edit {
				return runConfigEdit(cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVar(&edit, "edit", false, "Edit the local settings interactively")
	return cmd
}

func runConfigShow(ctx context.Context, w, errW io.Writer) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}

	s := newOutputStyles(w)
	cfg := sess.config()
	st := sess.settings

	fmt.Fprintln(w, s.sectionRule("Configuration"))
	writeField(w, s, "Enabled", strconv.FormatBool(st.Enabled))
	writeField(w, s, "Auto commit", strconv.FormatBool(cfg.AutoCommitEnabled))
	writeField(w, s, "Auto push", strconv.FormatBool(cfg.AutoPushEnabled))
	writeField(w, s, "Batch size", strconv.Itoa(cfg.PushBatchSize))
	writeField(w, s, "Threshold", strconv.Itoa(cfg.MinChangesThreshold))
	writeField(w, s, "Checkpoints", relativeTo(sess.root, cfg.CheckpointDir))
	writeField(w, s, "Metrics", relativeTo(sess.root, cfg.MetricsDir))
	writeField(w, s, "Security", relativeTo(sess.root, cfg.SecurityAuditFile))
	writeField(w, s, "Summary", relativeTo(sess.root, cfg.SummaryFile))
	writeField(w, s, "Trailer", cfg.CommitTrailer)
	writeField(w, s, "Telemetry", strconv.FormatBool(st.IsTelemetryEnabled()))

	fmt.Fprintln(w)
	fmt.Fprintln(w, s.sectionRule("Repository"))
	state := sess.orchestrator().Inspect(ctx)
	if !state.IsRepository {
		fmt.Fprintln(w, "  Not a git repository.")
		return nil
	}
	writeField(w, s, "Branch", state.BranchOrUnknown())
	writeField(w, s, "Changed", strconv.Itoa(state.ChangedFileCount))
	if state.HasUpstream {
		writeField(w, s, "Unpushed", fmt.Sprintf("%d of %d before the next push", state.CommitsAhead, cfg.PushBatchSize))
	} else {
		writeField(w, s, "Unpushed", "no upstream configured")
	}
	return nil
}

// configEdits holds the values bound to the edit form.
type configEdits struct {
	autoCommit bool
	autoPush   bool
	batchSize  string
	threshold  string
	telemetry  bool
}

func editsFromSettings(s *settings.Settings) configEdits {
	return configEdits{
		autoCommit: s.AutoCommit,
		autoPush:   s.AutoPush,
		batchSize:  strconv.Itoa(s.PushBatchSize),
		threshold:  strconv.Itoa(s.MinChangesThreshold),
		telemetry:  s.IsTelemetryEnabled(),
	}
}

// apply copies the form values onto s and validates the result.
func (e configEdits) apply(s *settings.Settings) error {
	batch, err := strconv.Atoi(e.batchSize)
	if err != nil {
		return fmt.Errorf("%w: push batch size %q is not a number", settings.ErrInvalidSettings, e.batchSize)
	}
	threshold, err := strconv.Atoi(e.threshold)
	if err != nil {
		return fmt.Errorf("%w: change threshold %q is not a number", settings.ErrInvalidSettings, e.threshold)
	}

	s.AutoCommit = e.autoCommit
	s.AutoPush = e.autoPush
	s.PushBatchSize = batch
	s.MinChangesThreshold = threshold
	telemetry := e.telemetry
	s.Telemetry = &telemetry
	return s.Validate()
}

func validatePositive(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}

func validateNonNegative(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return errors.New("enter a whole number of at least 0")
	}
	return nil
}

func runConfigEdit(w, errW io.Writer) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}
	if !sess.inRepository() {
		fmt.Fprintln(errW, "Not a git repository. Run 'checkpoint config --edit' from within a git repository.")
		return NewSilentError(errors.New("not a git repository"))
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(errW, "config --edit needs an interactive terminal. Edit .checkpoint/settings.local.json instead.")
		return NewSilentError(errors.New("no terminal"))
	}

	edits := editsFromSettings(sess.settings)
	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Commit automatically?").
				Description("Checkpoints stage and commit pending changes. Session end always commits.").
				Value(&edits.autoCommit),
			huh.NewConfirm().
				Title("Push automatically?").
				Description("Push once enough checkpoint commits are waiting.").
				Value(&edits.autoPush),
			huh.NewInput().
				Title("Push batch size").
				Description("Unpushed commits that trigger a push.").
				Value(&edits.batchSize).
				Validate(validatePositive),
			huh.NewInput().
				Title("Change threshold").
				Description("Changed files an auto checkpoint needs before it records anything.").
				Value(&edits.threshold).
				Validate(validateNonNegative),
			huh.NewConfirm().
				Title("Share anonymous usage data?").
				Description("Only checkpoint categories and outcomes. No code or messages.").
				Value(&edits.telemetry),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("config form: %w", err)
	}

	if err := edits.apply(sess.settings); err != nil {
		return err
	}
	if err := settings.SaveLocal(sess.settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Fprintf(w, "Saved %s\n", settings.SettingsLocalFile)
	return nil
}

// NewAccessibleForm creates a huh form that switches to accessible mode when
// the ACCESSIBLE environment variable is set.
func NewAccessibleForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithAccessible(os.Getenv("ACCESSIBLE") != "")
}
