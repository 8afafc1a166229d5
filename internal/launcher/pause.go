package launcher

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether stdin is attached to a terminal. The
// failure pause only makes sense for an operator sitting at a console; a
// piped or redirected stdin would block forever.
func Interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WaitForAck prints a prompt and blocks until the operator sends a line
// (or input closes). This keeps the failure message on screen when the
// launcher was started by double-click and the console would close with it.
func WaitForAck(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Press Enter to continue...")
	reader := bufio.NewReader(in)
	_, _ = reader.ReadString('\n')
}
