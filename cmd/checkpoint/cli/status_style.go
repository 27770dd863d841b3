package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// outputStyles holds pre-built lipgloss styles and terminal metadata.
type outputStyles struct {
	colorEnabled bool
	width        int

	green  lipgloss.Style
	red    lipgloss.Style
	yellow lipgloss.Style
	bold   lipgloss.Style
	dim    lipgloss.Style
	cyan   lipgloss.Style
}

// newOutputStyles creates styles appropriate for the output writer.
func newOutputStyles(w io.Writer) outputStyles {
	s := outputStyles{
		colorEnabled: shouldUseColor(w),
		width:        getTerminalWidth(),
	}

	if s.colorEnabled {
		s.green = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		s.red = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
		s.yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		s.bold = lipgloss.NewStyle().Bold(true)
		s.dim = lipgloss.NewStyle().Faint(true)
		s.cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}

	return s
}

// render applies a style to text only when color is enabled.
func (s outputStyles) render(style lipgloss.Style, text string) string {
	if !s.colorEnabled {
		return text
	}
	return style.Render(text)
}

// shouldUseColor returns true if the writer supports color output.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// getTerminalWidth returns the terminal width, capped at 80 with a fallback of 60.
func getTerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		if w > 80 {
			return 80
		}
		return w
	}
	return 60
}

// sectionRule renders a section header like: ── History ────────────
func (s outputStyles) sectionRule(label string) string {
	prefix := "── "
	trailing := s.width - lipgloss.Width(prefix+label+" ")
	if trailing < 1 {
		trailing = 1
	}

	var b strings.Builder
	b.WriteString(s.render(s.dim, prefix))
	b.WriteString(s.render(s.dim, label))
	b.WriteString(" ")
	b.WriteString(s.render(s.dim, strings.Repeat("─", trailing)))
	return b.String()
}

// shortHash abbreviates a commit hash for display.
func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
