package build

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/pkgbuild/internal/buildenv"
	"github.com/vango-dev/pkgbuild/internal/errors"
	"github.com/vango-dev/pkgbuild/internal/fsys"
	"github.com/vango-dev/pkgbuild/internal/metrics"
	"github.com/vango-dev/pkgbuild/internal/target"
)

// TracerName is the instrumentation name of the builder's spans.
const TracerName = "github.com/vango-dev/pkgbuild/internal/build"

// Packages is the part of the target catalog the builder needs.
type Packages interface {
	Manifest(target string) (*target.Manifest, error)
	DistDir(target string) string
}

// Options configures the builder.
type Options struct {
	// Flags are the run-wide build switches.
	Flags buildenv.Flags

	// Commit is the short revision shared by every target of the run.
	Commit string

	// Bundler is the bundler executable (default: "rollup").
	Bundler string

	// BundlerArgs precede "--environment <env>" (default: ["-c"]).
	BundlerArgs []string

	// Runner executes the bundler. Default: an ExecRunner with inherited
	// standard streams.
	Runner Runner

	// FS removes dist directories. Default: the OS filesystem.
	FS fsys.FS

	// Metrics receives one observation per bundler run. Optional.
	Metrics *metrics.Recorder

	// Logger receives debug output. Default: slog.Default().
	Logger *slog.Logger

	// OnProgress is called before each target is built.
	OnProgress func(target string, env buildenv.Environment)
}

// StepResult is the outcome of building one target.
type StepResult struct {
	Target   string
	Env      buildenv.Environment
	Duration time.Duration
	Err      error
}

// Result contains the build output.
type Result struct {
	// Duration is how long the whole run took.
	Duration time.Duration

	// Steps holds one entry per attempted target, in build order. When
	// the run fails, the last entry is the failed step.
	Steps []StepResult
}

// Builder builds targets sequentially.
type Builder struct {
	packages Packages
	options  Options
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New creates a new builder.
func New(packages Packages, options Options) *Builder {
	if options.Bundler == "" {
		options.Bundler = "rollup"
	}
	if options.BundlerArgs == nil {
		options.BundlerArgs = []string{"-c"}
	}
	if options.Runner == nil {
		options.Runner = &ExecRunner{}
	}
	if options.FS == nil {
		options.FS = fsys.OS{}
	}
	options.Flags = options.Flags.Normalize()

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		packages: packages,
		options:  options,
		logger:   logger.With("component", "build"),
		tracer:   otel.Tracer(TracerName),
	}
}

// BuildAll builds targets one after another and stops at the first failure.
// ctx carries tracing only; bundler runs are never cancelled.
func (b *Builder) BuildAll(ctx context.Context, targets []string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	ctx, span := b.tracer.Start(ctx, "pkgbuild.build_all",
		trace.WithAttributes(
			attribute.StringSlice("pkgbuild.targets", targets),
			attribute.String("pkgbuild.commit", b.options.Commit),
		))
	defer span.End()

	for _, t := range targets {
		step := b.build(ctx, t)
		result.Steps = append(result.Steps, step)
		if step.Err != nil {
			result.Duration = time.Since(start)
			span.RecordError(step.Err)
			span.SetStatus(codes.Error, step.Err.Error())
			return result, step.Err
		}
	}

	result.Duration = time.Since(start)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// build runs every step for one target and reports the outcome.
func (b *Builder) build(ctx context.Context, t string) (step StepResult) {
	start := time.Now()
	step.Target = t

	_, span := b.tracer.Start(ctx, "pkgbuild.build",
		trace.WithAttributes(attribute.String("pkgbuild.target", t)))
	defer func() {
		step.Duration = time.Since(start)
		if step.Err != nil {
			span.RecordError(step.Err)
			span.SetStatus(codes.Error, step.Err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()

	manifest, err := b.packages.Manifest(t)
	if err != nil {
		step.Err = err
		return step
	}

	dist := b.packages.DistDir(t)
	if err := b.options.FS.RemoveAll(dist); err != nil {
		step.Err = errors.New(errors.CodeCleanup).WithTarget(t).Wrap(err)
		return step
	}

	step.Env = buildenv.Resolve(t, manifest.Env(), b.options.Flags, b.options.Commit)
	mode, _ := step.Env.Lookup("NODE_ENV")
	span.SetAttributes(attribute.String("pkgbuild.node_env", mode))

	if b.options.OnProgress != nil {
		b.options.OnProgress(t, step.Env)
	}

	args := append(append([]string(nil), b.options.BundlerArgs...), "--environment", step.Env.String())
	b.logger.Debug("running bundler", "target", t, "command", b.options.Bundler, "args", args)

	runStart := time.Now()
	err = b.options.Runner.Run(b.options.Bundler, args...)
	b.options.Metrics.ObserveBuild(t, time.Since(runStart), err)
	if err != nil {
		step.Err = errors.New(errors.CodeBundlerFailed).
			WithTarget(t).
			WithExitCode(ExitCode(err)).
			WithSuggestion("Fix the bundler errors above and rerun the build for " + t).
			Wrap(err)
		return step
	}

	b.logger.Debug("bundler finished", "target", t, "duration", time.Since(runStart))
	return step
}
