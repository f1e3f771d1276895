package dev

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/pkgbuild/internal/buildenv"
)

// Options configures a dev session.
type Options struct {
	Target string

	// Command and Args start the bundler in watch mode.
	Command string
	Args    []string

	// Env is the watch environment passed to the bundler.
	Env buildenv.Environment

	// Dir is the bundler's working directory, normally the repo root.
	Dir string

	// DistDir is the target's output directory.
	DistDir string

	// Serve starts the development server on Addr.
	Serve bool
	Addr  string

	// Interval is the polling period of the dist watcher.
	Interval time.Duration

	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	OnReload func(change Change, clients int)
}

// Session is a watch bundler plus an optional server.
type Session struct {
	bundler *Bundler
	server  *Server
}

// NewSession creates a dev session.
func NewSession(options Options) *Session {
	s := &Session{
		bundler: &Bundler{
			Command: options.Command,
			Args:    options.Args,
			Env:     options.Env,
			Dir:     options.Dir,
			Stdout:  options.Stdout,
			Stderr:  options.Stderr,
			Logger:  options.Logger,
		},
	}
	if options.Serve {
		s.server = NewServer(ServerOptions{
			Target:   options.Target,
			Env:      options.Env,
			DistDir:  options.DistDir,
			Addr:     options.Addr,
			Interval: options.Interval,
			Logger:   options.Logger,
			OnReload: options.OnReload,
		})
	}
	return s
}

// Bundler returns the session's watch bundler.
func (s *Session) Bundler() *Bundler { return s.bundler }

// Server returns the session's server, or nil when not serving.
func (s *Session) Server() *Server { return s.server }

// Run blocks until ctx is done, the bundler exits or the server fails.
// Whichever ends first stops the other.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return s.bundler.Run(gctx)
	})
	if s.server != nil {
		g.Go(func() error {
			defer cancel()
			return s.server.Start(gctx)
		})
	}
	return g.Wait()
}
