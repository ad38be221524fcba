// Package console prints user-facing build feedback. Notices are plain lines,
// warnings are indented with "  - " and errors with "  * ". Structured
// diagnostics go through slog instead; this package is only the stable
// console contract scripts and humans read.
package console

import (
	"fmt"
	"io"
	"os"
)

// Console writes notices, warnings and errors to a single output stream.
type Console struct {
	out io.Writer
}

// New returns a Console writing to out. A nil out falls back to stdout.
func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// Default is the process-wide console used by commands.
func Default() *Console { return New(os.Stdout) }

// Notice prints a plain line.
func (c *Console) Notice(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

// Warning prints an indented warning line.
func (c *Console) Warning(format string, args ...any) {
	fmt.Fprintf(c.out, "  - "+format+"\n", args...)
}

// Error prints an indented error line.
func (c *Console) Error(format string, args ...any) {
	fmt.Fprintf(c.out, "  * "+format+"\n", args...)
}
