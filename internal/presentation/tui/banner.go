package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"   __                 _      _           _   ", "#34d399"},
	{"  / _|_   _ _ __   __| | ___| |__   __ _| |_ ", "#2dd4bf"},
	{" | |_| | | | '_ \\ / _` |/ __| '_ \\ / _` | __|", "#22d3ee"},
	{" |  _| |_| | | | | (_| | (__| | | | (_| | |_ ", "#38bdf8"},
	{" |_|  \\__,_|_| |_|\\__,_|\\___|_| |_|\\__,_|\\__|", "#60a5fa"},
}

// PrintBanner writes the fundchat banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String(fmt.Sprintf("  v%s  type @ to mention a fund, :q to quit", version)).Faint())
	fmt.Fprintln(w)
}
