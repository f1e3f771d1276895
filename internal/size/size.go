// Package size audits the compressed size of built production artifacts.
//
// For each target the auditor reads one artifact from the target's dist
// directory and reports its raw, gzip and brotli lengths. Targets whose
// artifact does not exist are skipped without error.
package size

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/andybalholm/brotli"

	"github.com/vango-dev/pkgbuild/internal/errors"
	"github.com/vango-dev/pkgbuild/internal/fsys"
	"github.com/vango-dev/pkgbuild/internal/metrics"
)

// Compressor returns the compressed length of data.
type Compressor func(data []byte) (int, error)

// Gzip compresses at gzip.BestCompression.
func Gzip(data []byte) (int, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	return finish(w, &buf, data)
}

// Brotli compresses at brotli.BestCompression.
func Brotli(data []byte) (int, error) {
	var buf bytes.Buffer
	return finish(brotli.NewWriterLevel(&buf, brotli.BestCompression), &buf, data)
}

func finish(w io.WriteCloser, buf *bytes.Buffer, data []byte) (int, error) {
	if _, err := w.Write(data); err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}

// FormatSize renders n bytes as kilobytes with two decimals, e.g. "10.00kb".
func FormatSize(n int) string {
	return fmt.Sprintf("%.2fkb", float64(n)/1024)
}

// Report is the audited size of one artifact.
type Report struct {
	Target   string `json:"target"`
	Artifact string `json:"artifact"`
	Raw      int    `json:"raw"`
	Gzip     int    `json:"gzip"`
	Brotli   int    `json:"brotli"`
}

// RawSize returns the formatted raw size.
func (r Report) RawSize() string { return FormatSize(r.Raw) }

// GzipSize returns the formatted gzip size.
func (r Report) GzipSize() string { return FormatSize(r.Gzip) }

// BrotliSize returns the formatted brotli size.
func (r Report) BrotliSize() string { return FormatSize(r.Brotli) }

// String renders the report as "<target> min:<raw> / gzip:<gz> / brotli:<br>".
func (r Report) String() string {
	return r.line(r.Target)
}

func (r Report) line(name string) string {
	return fmt.Sprintf("%s min:%s / gzip:%s / brotli:%s", name, r.RawSize(), r.GzipSize(), r.BrotliSize())
}

// Packages locates target output directories.
type Packages interface {
	DistDir(target string) string
}

// Options configures an Auditor.
type Options struct {
	// Artifact maps a target to the file name audited in its dist
	// directory. Default: "<target>.esm-browser.prod.js".
	Artifact func(target string) string

	// FS reads artifacts. Default: the OS filesystem.
	FS fsys.FS

	Gzip   Compressor
	Brotli Compressor

	// Metrics receives artifact sizes. Optional.
	Metrics *metrics.Recorder

	Logger *slog.Logger
}

// Auditor measures artifacts. It never writes to the filesystem.
type Auditor struct {
	packages Packages
	options  Options
	logger   *slog.Logger
}

// DefaultArtifact is the production browser build of target.
func DefaultArtifact(target string) string {
	return target + ".esm-browser.prod.js"
}

// New creates an Auditor.
func New(packages Packages, options Options) *Auditor {
	if options.Artifact == nil {
		options.Artifact = DefaultArtifact
	}
	if options.FS == nil {
		options.FS = fsys.OS{}
	}
	if options.Gzip == nil {
		options.Gzip = Gzip
	}
	if options.Brotli == nil {
		options.Brotli = Brotli
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		packages: packages,
		options:  options,
		logger:   logger.With("component", "size"),
	}
}

// Audit measures target's artifact. It returns nil and no error when the
// artifact does not exist.
func (a *Auditor) Audit(target string) (*Report, error) {
	name := a.options.Artifact(target)
	path := filepath.Join(a.packages.DistDir(target), name)

	if !a.options.FS.Exists(path) {
		a.logger.Debug("artifact missing, skipping", "target", target, "path", path)
		return nil, nil
	}

	data, err := a.options.FS.ReadFile(path)
	if err != nil {
		return nil, artifactError(target, path, err)
	}

	gz, err := a.options.Gzip(data)
	if err != nil {
		return nil, artifactError(target, path, err)
	}
	br, err := a.options.Brotli(data)
	if err != nil {
		return nil, artifactError(target, path, err)
	}

	report := &Report{
		Target:   target,
		Artifact: name,
		Raw:      len(data),
		Gzip:     gz,
		Brotli:   br,
	}
	a.options.Metrics.ObserveArtifact(target, report.Raw, report.Gzip, report.Brotli)
	return report, nil
}

// AuditAll audits targets in order and returns a report for each one whose
// artifact exists.
func (a *Auditor) AuditAll(targets []string) ([]Report, error) {
	var reports []Report
	for _, t := range targets {
		report, err := a.Audit(t)
		if err != nil {
			return reports, err
		}
		if report != nil {
			reports = append(reports, *report)
		}
	}
	return reports, nil
}

func artifactError(target, path string, err error) error {
	return errors.New(errors.CodeArtifact).
		WithTarget(target).
		WithDetail(path).
		Wrap(err)
}

const (
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
	colorReset = "\033[0m"
)

// Fprint writes one line per report. Target names are bold gray when
// terminal colors are enabled.
func Fprint(w io.Writer, reports []Report) {
	for _, r := range reports {
		name := r.Target
		if errors.ColorsEnabled() {
			name = colorBold + colorGray + name + colorReset
		}
		fmt.Fprintln(w, r.line(name))
	}
}
