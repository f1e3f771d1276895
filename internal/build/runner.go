package build

import (
	"io"
	"os"
	"os/exec"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

// Runner executes external commands.
type Runner interface {
	// Output runs a command to completion and returns its stdout.
	Output(name string, args ...string) ([]byte, error)

	// Run runs a command to completion with the runner's standard streams.
	Run(name string, args ...string) error
}

// ExecRunner runs commands with os/exec. Nil streams default to the
// process's own.
type ExecRunner struct {
	// Dir is the working directory of commands.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// Output runs name and returns its stdout. Stderr is discarded.
func (r *ExecRunner) Output(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	return cmd.Output()
}

// Run runs name with inherited standard streams and waits for it.
func (r *ExecRunner) Run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = orReader(r.Stdin, os.Stdin)
	cmd.Stdout = orWriter(r.Stdout, os.Stdout)
	cmd.Stderr = orWriter(r.Stderr, os.Stderr)
	return cmd.Run()
}

func orReader(r, def io.Reader) io.Reader {
	if r == nil {
		return def
	}
	return r
}

func orWriter(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

// ExitCode returns the exit status carried by err, or -1 when the command
// never started or was killed by a signal.
func ExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
