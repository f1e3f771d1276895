package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pkgbuild/internal/build"
	"github.com/vango-dev/pkgbuild/internal/buildenv"
	"github.com/vango-dev/pkgbuild/internal/dev"
	"github.com/vango-dev/pkgbuild/internal/errors"
)

type devRequest struct {
	name    string
	formats string
	serve   bool
	port    int
	host    string

	runner build.Runner
}

func devCmd(globals *globalFlags) *cobra.Command {
	var req devRequest

	cmd := &cobra.Command{
		Use:   "dev [target]",
		Short: "Run the bundler in watch mode for one target",
		Long: `Run the bundler in watch mode for a single target.

The target is the first package matching the given name, or
dev.defaultTarget from pkgbuild.json, or the first package. With
--serve, the target's dist directory is served with live reload.

Examples:
  pkgbuild dev
  pkgbuild dev cli --formats esm-bundler
  pkgbuild dev cli --serve --port 8080`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(globals.configPath)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				req.name = args[0]
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case <-sigCh:
					cancel()
				case <-ctx.Done():
				}
			}()

			session, err := newDevSession(p, req)
			if err != nil {
				return err
			}
			return session.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&req.formats, "formats", "f", "", "Comma-separated output formats (default from pkgbuild.json)")
	cmd.Flags().BoolVar(&req.serve, "serve", false, "Serve the dist directory with live reload")
	cmd.Flags().IntVar(&req.port, "port", 0, "Port to serve on (default from pkgbuild.json)")
	cmd.Flags().StringVar(&req.host, "host", "", "Host to bind to (default from pkgbuild.json)")

	return cmd
}

// devTarget picks the single target watched by the dev command.
func devTarget(p *project, name string) (string, error) {
	if name == "" {
		name = p.cfg.Dev.DefaultTarget
	}
	if name == "" {
		names := p.catalog.Names()
		if len(names) == 0 {
			return "", errors.New(errors.CodeNoMatch).
				WithDetail("No buildable packages in " + p.catalog.Dir())
		}
		return names[0], nil
	}

	targets, err := p.catalog.Resolve([]string{name}, false)
	if err != nil {
		return "", err
	}
	return targets[0], nil
}

func newDevSession(p *project, req devRequest) (*dev.Session, error) {
	cfg := p.cfg

	t, err := devTarget(p, req.name)
	if err != nil {
		return nil, err
	}

	runner := req.runner
	if runner == nil {
		runner = &build.ExecRunner{Dir: cfg.Dir()}
	}
	rev, err := build.Revision(runner, cfg.Revision.Command, cfg.Revision.Args...)
	if err != nil {
		return nil, err
	}

	host, port := cfg.Dev.Host, cfg.Dev.Port
	if req.host != "" {
		host = req.host
	}
	if req.port > 0 {
		port = req.port
	}
	addr := host + ":" + strconv.Itoa(port)

	env := buildenv.Watch(t, req.formats, cfg.Dev.Formats, rev)
	info("Watching %s (%s)", t, env)
	if req.serve {
		info("Serving %s at http://%s/dist/", t, addr)
	}

	return dev.NewSession(dev.Options{
		Target:  t,
		Command: cfg.Bundler.Command,
		Args:    cfg.Bundler.WatchArgs,
		Env:     env,
		Dir:     cfg.Dir(),
		DistDir: p.catalog.DistDir(t),
		Serve:   req.serve,
		Addr:    addr,
		OnReload: func(change dev.Change, clients int) {
			success("Reloaded %d browser(s)", clients)
		},
	}), nil
}
