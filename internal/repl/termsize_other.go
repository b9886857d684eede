//go:build !unix

package repl

import (
	"os"

	"golang.org/x/term"
)

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
