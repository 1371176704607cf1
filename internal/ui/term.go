package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultTermWidth is the fallback width when detection fails.
const DefaultTermWidth = 100

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
}

// TerminalWidth returns the stdout width, or DefaultTermWidth when stdout
// is not a terminal or the size cannot be read.
func TerminalWidth() int {
	fd := os.Stdout.Fd()
	if !term.IsTerminal(fd) {
		return DefaultTermWidth
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return DefaultTermWidth
}
