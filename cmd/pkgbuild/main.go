package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Fprint(stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var globals globalFlags

	rootCmd := &cobra.Command{
		Use:   "pkgbuild",
		Short: "Build and audit the packages of a monorepo",
		Long: `pkgbuild builds the packages of a monorepo with an external bundler.

Each target is a directory under packages/ with a package.json. Targets
are built one at a time with a per-target environment, and the size of
each production browser artifact is reported after the build.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if globals.noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			}
			setupLogging(globals.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "Path to pkgbuild.json (default: found from the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&globals.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		buildCmd(&globals),
		sizeCmd(&globals),
		devCmd(&globals),
		targetsCmd(&globals),
		entryCmd(&globals),
		versionCmd(),
	)

	return rootCmd
}

// setupLogging installs the default slog logger on stderr.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
}

func paint(code, text string) string {
	if !errors.ColorsEnabled() {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(stdout, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(stdout, "%s %s\n", paint("\033[33m", "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(stderr, "%s %s\n", paint("\033[31m", "✗"), fmt.Sprintf(format, args...))
}
