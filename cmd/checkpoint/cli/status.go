package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sessionkit/checkpoint/cmd/checkpoint/cli/checkpoint"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest checkpoint",
		Long: `Show the fields of the most recent checkpoint record.

Reads .checkpoint/checkpoints/latest-checkpoint.json and never modifies the
repository or any metrics file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runStatus(w, errW io.Writer) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}
	if !sess.inRepository() {
		fmt.Fprintln(w, "Not a git repository.")
		return nil
	}

	rec, err := sess.store().Latest()
	if errors.Is(err, checkpoint.ErrNoCheckpoints) {
		fmt.Fprintln(w, "No checkpoints recorded yet.")
		return nil
	}
	if err != nil {
		return err
	}

	s := newOutputStyles(w)
	writeRecord(w, s, rec, time.Now())
	return nil
}

// writeRecord prints a record as an indented field list.
func writeRecord(w io.Writer, s outputStyles, rec *checkpoint.Record, now time.Time) {
	when := rec.Timestamp
	if t, err := rec.Time(); err == nil {
		when = fmt.Sprintf("%s (%s)", rec.Timestamp, humanize.RelTime(t, now, "ago", "from now"))
	}

	fmt.Fprintf(w, "%s %s\n", s.render(s.bold, string(rec.Type)), checkpoint.DisplayMessage(rec.Message))
	writeField(w, s, "Time", when)
	writeField(w, s, "Commit", s.render(s.cyan, shortHash(rec.CommitHash)))
	writeField(w, s, "Branch", rec.Branch)
	writeField(w, s, "Progress", string(rec.V3Progress))
	writeField(w, s, "Performance", string(rec.Performance))
	writeField(w, s, "Security", string(rec.Security))
}

func writeField(w io.Writer, s outputStyles, label, value string) {
	fmt.Fprintf(w, "  %s %s\n", s.render(s.dim, fmt.Sprintf("%-12s", label+":")), value)
}
