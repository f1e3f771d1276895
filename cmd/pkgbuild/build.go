package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pkgbuild/internal/build"
	"github.com/vango-dev/pkgbuild/internal/buildenv"
	"github.com/vango-dev/pkgbuild/internal/metrics"
	"github.com/vango-dev/pkgbuild/internal/publish"
	"github.com/vango-dev/pkgbuild/internal/size"
)

// buildRequest is everything a build run needs besides the project.
type buildRequest struct {
	names        []string
	flags        buildenv.Flags
	metricsFile  string
	reportBucket string
	reportKey    string

	// runner and uploader are replaced in tests.
	runner   build.Runner
	uploader publish.PutObjectAPI
}

func buildCmd(globals *globalFlags) *cobra.Command {
	var req buildRequest

	cmd := &cobra.Command{
		Use:   "build [targets...]",
		Short: "Build targets and report their sizes",
		Long: `Build one or more targets sequentially with the bundler.

Each name is matched against the packages: an exact name wins, otherwise
the first package containing the name is built. With --all, every
package containing the name is built. Without names, all packages are
built. The first failing target stops the run.

Examples:
  pkgbuild build
  pkgbuild build cli image
  pkgbuild build image --all --formats esm-bundler,cjs
  pkgbuild build cli --devOnly --types`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(globals.configPath)
			if err != nil {
				return err
			}
			req.names = args
			return runBuild(cmd.Context(), p, req)
		},
	}

	cmd.Flags().StringVarP(&req.flags.Formats, "formats", "f", "", "Comma-separated output formats passed to the bundler")
	cmd.Flags().BoolVarP(&req.flags.DevOnly, "devOnly", "d", false, "Build development artifacts only")
	cmd.Flags().BoolVarP(&req.flags.ProdOnly, "prodOnly", "p", false, "Build production artifacts only")
	cmd.Flags().BoolVarP(&req.flags.MatchAll, "all", "a", false, "Build every package matching each name")
	cmd.Flags().BoolVar(&req.flags.Types, "types", false, "Generate type declarations")
	cmd.Flags().StringVar(&req.metricsFile, "metrics-file", "", "Write build metrics to this file in Prometheus text format")
	cmd.Flags().StringVar(&req.reportBucket, "report-bucket", "", "Upload the size report to this S3 bucket")
	cmd.Flags().StringVar(&req.reportKey, "report-key", "", "Object key of the uploaded size report (default from pkgbuild.json)")

	return cmd
}

func runBuild(ctx context.Context, p *project, req buildRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := p.cfg
	flags := req.flags.Normalize()

	targets, err := p.catalog.Resolve(req.names, flags.MatchAll)
	if err != nil {
		return err
	}

	runner := req.runner
	if runner == nil {
		runner = &build.ExecRunner{Dir: cfg.Dir()}
	}

	rev, err := build.Revision(runner, cfg.Revision.Command, cfg.Revision.Args...)
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	if req.metricsFile != "" {
		recorder = metrics.New()
	}

	info("Building %d target(s) at %s", len(targets), rev)

	builder := build.New(p.catalog, build.Options{
		Flags:       flags,
		Commit:      rev,
		Bundler:     cfg.Bundler.Command,
		BundlerArgs: cfg.Bundler.Args,
		Runner:      runner,
		Metrics:     recorder,
		OnProgress: func(t string, env buildenv.Environment) {
			info("Building %s (%s)", t, env)
		},
	})

	result, buildErr := builder.BuildAll(ctx, targets)
	if buildErr != nil {
		errorMsg("Build stopped after %d of %d target(s)", len(result.Steps), len(targets))
		if err := writeMetrics(recorder, req.metricsFile); err != nil {
			warn("Could not write metrics: %v", err)
		}
		return buildErr
	}

	auditor := size.New(p.catalog, size.Options{
		Artifact: cfg.ArtifactName,
		Metrics:  recorder,
	})
	reports, err := auditor.AuditAll(targets)
	if err != nil {
		return err
	}

	if len(reports) > 0 {
		info("")
		size.Fprint(stdout, reports)
		info("")
	}

	if err := writeMetrics(recorder, req.metricsFile); err != nil {
		return err
	}

	if req.reportBucket != "" {
		if err := publishReports(ctx, p, req, rev, reports); err != nil {
			return err
		}
	}

	success("Built %d target(s) in %s", len(result.Steps), result.Duration.Round(time.Millisecond))
	return nil
}

func writeMetrics(recorder *metrics.Recorder, path string) error {
	if recorder == nil || path == "" {
		return nil
	}
	return recorder.WriteFile(path)
}

func publishReports(ctx context.Context, p *project, req buildRequest, rev string, reports []size.Report) error {
	key := req.reportKey
	if key == "" {
		key = p.cfg.ReportKey(rev)
	}

	uploader := req.uploader
	if uploader == nil {
		uploader = publish.NewClient(p.cfg.Report.Region)
	}

	if err := publish.New(uploader, req.reportBucket, nil).Publish(ctx, key, rev, reports); err != nil {
		return err
	}
	success("Published size report to s3://%s/%s", req.reportBucket, key)
	return nil
}
