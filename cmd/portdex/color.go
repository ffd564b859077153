package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// colorEnabled decides whether to emit ANSI color: never when suppressed by
// flag, config, or the NO_COLOR convention, and only when writing to a TTY.
func colorEnabled(w io.Writer, suppressed bool) bool {
	if suppressed || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func bold(s string) string {
	return "\x1b[1m" + s + "\x1b[0m"
}

func yellow(s string) string {
	return "\x1b[33m" + s + "\x1b[0m"
}

// boldFirstLine emphasizes the headline of a multi-line answer.
func boldFirstLine(s string) string {
	line, rest, found := strings.Cut(s, "\n")
	if !found {
		return bold(line)
	}
	return bold(line) + "\n" + rest
}
