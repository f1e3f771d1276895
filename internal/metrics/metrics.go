// Package metrics records build and artifact metrics with Prometheus.
//
// Metrics collected:
//   - pkgbuild_builds_total: Counter of bundler runs by target and status
//   - pkgbuild_build_duration_seconds: Histogram of bundler run time by target
//   - pkgbuild_artifact_bytes: Gauge of audited artifact size by target and encoding
//
// A Recorder owns a private registry, so several recorders never collide.
// WriteFile emits the node_exporter textfile collector format:
//
//	rec := metrics.New(metrics.WithConstLabels(prometheus.Labels{"repo": "image"}))
//	// ... build ...
//	rec.WriteFile("/var/lib/node_exporter/pkgbuild.prom")
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "pkgbuild").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for build duration.
	// Default: 0.5s to ~4m, exponential.
	Buckets []float64
}

// Option configures a Recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "pkgbuild",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	}
}

// Recorder holds the build metrics.
type Recorder struct {
	registry      *prometheus.Registry
	buildsTotal   *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	artifactBytes *prometheus.GaugeVec
}

// New creates a Recorder with its own registry.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,

		buildsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "builds_total",
			Help:        "Total number of bundler runs",
			ConstLabels: config.ConstLabels,
		}, []string{"target", "status"}),

		buildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "build_duration_seconds",
			Help:        "Bundler run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"target"}),

		artifactBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "artifact_bytes",
			Help:        "Size of the audited production artifact in bytes",
			ConstLabels: config.ConstLabels,
		}, []string{"target", "encoding"}),
	}
}

// ObserveBuild records one bundler run.
func (r *Recorder) ObserveBuild(target string, d time.Duration, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	r.buildsTotal.WithLabelValues(target, status).Inc()
	r.buildDuration.WithLabelValues(target).Observe(d.Seconds())
}

// ObserveArtifact records the audited sizes of target's artifact.
func (r *Recorder) ObserveArtifact(target string, raw, gzip, brotli int) {
	if r == nil {
		return
	}
	r.artifactBytes.WithLabelValues(target, "raw").Set(float64(raw))
	r.artifactBytes.WithLabelValues(target, "gzip").Set(float64(gzip))
	r.artifactBytes.WithLabelValues(target, "brotli").Set(float64(brotli))
}

// Gatherer returns the registry backing the recorder.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
