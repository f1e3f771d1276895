package dev

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/vango-dev/pkgbuild/internal/build"
	"github.com/vango-dev/pkgbuild/internal/buildenv"
	"github.com/vango-dev/pkgbuild/internal/errors"
)

// stopTimeout is how long a stopped bundler gets before it is killed.
const stopTimeout = 5 * time.Second

// Bundler is a bundler process running in watch mode.
type Bundler struct {
	// Command is the bundler executable.
	Command string

	// Args precede "--environment <env>".
	Args []string

	// Env is rendered into the --environment argument.
	Env buildenv.Environment

	// Dir is the working directory of the bundler.
	Dir string

	// Nil streams default to the process's own.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Argv returns the full argument list passed to Command.
func (b *Bundler) Argv() []string {
	return append(append([]string(nil), b.Args...), "--environment", b.Env.String())
}

// Run starts the bundler and blocks until ctx is done or the bundler exits.
// Cancellation stops the bundler's whole process group and is not an error.
func (b *Bundler) Run(ctx context.Context) error {
	target, _ := b.Env.Lookup("TARGET")
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.Command(b.Command, b.Argv()...)
	cmd.Dir = b.Dir
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	proc, err := startProcess(cmd)
	if err != nil {
		return errors.New(errors.CodeBundlerFailed).
			WithTarget(target).
			WithExitCode(-1).
			Wrap(err)
	}
	logger.Debug("watch bundler started", "target", target, "pid", cmd.Process.Pid)

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		logger.Debug("stopping watch bundler", "target", target)
		stopProcess(proc, done)
		return nil
	case err := <-done:
		if err != nil {
			return errors.New(errors.CodeBundlerFailed).
				WithTarget(target).
				WithExitCode(build.ExitCode(err)).
				Wrap(err)
		}
		return nil
	}
}
