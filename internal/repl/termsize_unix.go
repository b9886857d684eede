//go:build unix

package repl

import (
	"os"

	"golang.org/x/sys/unix"
)

// terminalWidth returns the column count of stdout, or 0 when it is not a terminal.
func terminalWidth() int {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws == nil {
		return 0
	}
	return int(ws.Col)
}
