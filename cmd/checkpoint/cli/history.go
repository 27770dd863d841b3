package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 5

func newHistoryCmd() *cobra.Command {
	var limit int
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent checkpoints",
		Long: `List the most recent archived checkpoint records, newest first.

With --diff, also show a line diff between the two newest records.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", limit)
			}
			return runHistory(cmd.OutOrStdout(), cmd.ErrOrStderr(), limit, showDiff)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "Number of checkpoints to show")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show a line diff between the two newest checkpoints")
	return cmd
}

func runHistory(w, errW io.Writer, limit int, showDiff bool) error {
	sess, err := openSession(errW)
	if err != nil {
		return err
	}
	if !sess.inRepository() {
		fmt.Fprintln(w, "Not a git repository.")
		return nil
	}

	fetch := limit
	if showDiff && fetch < 2 {
		fetch = 2
	}
	entries, err := sess.store().History(fetch)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No checkpoints recorded yet.")
		return nil
	}

	s := newOutputStyles(w)
	now := time.Now()
	fmt.Fprintln(w, s.sectionRule("History"))
	for i, e := range entries {
		if i >= limit {
			break
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.render(s.dim, e.Name))
		writeRecord(w, s, e.Record, now)
	}

	if showDiff {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.sectionRule("Diff"))
		if len(entries) < 2 {
			fmt.Fprintln(w, "Only one checkpoint recorded, nothing to compare.")
			return nil
		}
		fmt.Fprintf(w, "%s %s\n", s.render(s.red, "---"), entries[1].Name)
		fmt.Fprintf(w, "%s %s\n", s.render(s.green, "+++"), entries[0].Name)
		writeLineDiff(w, s, string(entries[1].Data), string(entries[0].Data))
	}
	return nil
}

// writeLineDiff prints a unified-style line diff of older and newer.
func writeLineDiff(w io.Writer, s outputStyles, older, newer string) {
	for _, l := range lineDiff(older, newer) {
		switch l[0] {
		case '+':
			fmt.Fprintln(w, s.render(s.green, l))
		case '-':
			fmt.Fprintln(w, s.render(s.red, l))
		default:
			fmt.Fprintln(w, s.render(s.dim, l))
		}
	}
}

// lineDiff returns the lines of older and newer, each prefixed with "+",
// "-" or " ".
func lineDiff(older, newer string) []string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(older, newer)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffEqual:
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}

