package diagfmt

import (
	"io"
	"os"

	"fortio.org/safecast"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ColorEnabled reports whether diagnostics written to w should be
// coloured: w must be a terminal and NO_COLOR must be unset.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalWidth returns the column count of the terminal behind w, or 0.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd, err := safecast.Conv[int](f.Fd())
	if err != nil || !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
