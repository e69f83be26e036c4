package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the formflow ASCII art banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to blue, one colour per line
	lines := []struct {
		text  string
		color string
	}{
		{"   __                       __ _               ", "#2dd4bf"},
		{"  / _| ___  _ __ _ __ ___  / _| | _____      __", "#22d3ee"},
		{" | |_ / _ \\| '__| '_ ` _ \\| |_| |/ _ \\ \\ /\\ / /", "#38bdf8"},
		{" |  _| (_) | |  | | | | | |  _| | (_) \\ V  V / ", "#60a5fa"},
		{" |_|  \\___/|_|  |_| |_| |_|_| |_|\\___/ \\_/\\_/  ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colours a short status word: green when ok, red otherwise.
func Status(ok bool, text string) string {
	p := termenv.ColorProfile()
	color := "#ef4444"
	if ok {
		color = "#22c55e"
	}
	return termenv.String(text).Foreground(p.Color(color)).Bold().String()
}
