package checkpoint

import "strings"

// MaxDescriptionLength is the maximum length for messages shown in listings
// before truncation occurs.
const MaxDescriptionLength = 60

// TruncateDescription truncates a string to maxLen runes, adding "..." if truncated.
// If maxLen is less than 3, returns the first maxLen runes.
func TruncateDescription(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// FormatCommitMessage builds "<prefix> <message>" followed by the trailer
// after a blank line. An empty trailer is omitted.
func FormatCommitMessage(c Category, message, trailer string) string {
	var b strings.Builder
	b.WriteString(c.CommitPrefix())
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(message))
	if t := strings.TrimSpace(trailer); t != "" {
		b.WriteString("\n\n")
		b.WriteString(t)
	}
	return b.String()
}

// firstLine returns the first line of s for single-line displays.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// DisplayMessage returns a single-line, truncated message for listings.
func DisplayMessage(s string) string {
	return TruncateDescription(firstLine(s), MaxDescriptionLength)
}
