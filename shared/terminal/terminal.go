// Package terminal reports console capabilities used for human-facing output.
package terminal

import (
	"os"

	"golang.org/x/term"
)

// DefaultWidth is assumed when the width of stdout cannot be read.
const DefaultWidth = 80

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Width returns the column count of f, or DefaultWidth.
func Width(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}
