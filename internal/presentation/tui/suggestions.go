package tui

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/fundchat/pkg/domain"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// TerminalWidth reports the width of f, or DefaultWidth.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return DefaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return DefaultWidth
	}
	return w
}

// FormatSuggestions renders the visible suggestions as a numbered list,
// each line cut to width runes. It returns "" when nothing is visible.
func FormatSuggestions(v domain.View, width int) string {
	if !v.Visible {
		return ""
	}
	if len(v.Filtered) == 0 {
		return Truncate(fmt.Sprintf("  no fund matches @%s", v.Token), width) + "\n"
	}

	var sb strings.Builder
	for i, name := range v.Filtered {
		sb.WriteString(Truncate(fmt.Sprintf("  #%d  %s", i+1, name), width))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Truncate shortens s to at most width runes, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:width-1]) + "…"
}
