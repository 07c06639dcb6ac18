package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the novella title in a warm gradient, degrading to plain text
// when the output does not support color.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`  _ __   _____   _____| | | __ _ `, "#fbbf24"},
		{` | '_ \ / _ \ \ / / _ \ | |/ _' |`, "#f59e0b"},
		{` | | | | (_) \ V /  __/ | | (_| |`, "#f97316"},
		{` |_| |_|\___/ \_/ \___|_|_|\__,_|`, "#ef4444"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
