// Package term adjusts the controlling terminal while typematic owns
// the keyboard. Capturing from an input device does not stop the tty
// from echoing every keystroke, so recording sessions turn echo off
// and restore it on the way out.
package term

import "golang.org/x/term"

// IsTerminal reports whether fd is attached to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}
