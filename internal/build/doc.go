// Package build runs the bundler once per target, strictly in sequence.
//
// For every target the builder:
//   - reads the package manifest (an unknown target stops the run here)
//   - removes the target's dist directory
//   - resolves the bundler environment
//   - runs the bundler with the harness's own stdout and stderr
//
// The first failing step stops the run. Targets already built stay built and
// later targets are never attempted. There is no timeout, retry or
// cancellation: a hung bundler blocks the run.
//
// # Usage
//
//	commit, err := build.Revision(runner, "git", "rev-parse", "HEAD")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	builder := build.New(catalog, build.Options{
//	    Commit: commit,
//	    Flags:  buildenv.Flags{Formats: "global"},
//	})
//	result, err := builder.BuildAll(ctx, []string{"image", "cli"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Built %d targets in %s\n", len(result.Steps), result.Duration)
//
// # Bundler Invocation
//
// With the default options each target runs
//
//	rollup -c --environment COMMIT:abc1234,NODE_ENV:production,TARGET:image
package build
