package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pkgbuild.json"

	// DefaultPackages is the default packages directory.
	DefaultPackages = "packages"

	// DefaultBundler is the default bundler executable.
	DefaultBundler = "rollup"

	// DefaultArtifact is the default audited artifact name.
	DefaultArtifact = "{target}.esm-browser.prod.js"

	// DefaultDevPort is the default dev server port.
	DefaultDevPort = 3000

	// DefaultDevFormats is the default watch-mode format list.
	DefaultDevFormats = "global"

	// DefaultReportKey is the default object key for uploaded size reports.
	DefaultReportKey = "pkgbuild/{commit}.json"
)

// Config represents the complete pkgbuild.json configuration.
type Config struct {
	// Packages is the directory holding one subdirectory per target.
	Packages string `json:"packages,omitempty"`

	// Bundler configures the external bundler invocation.
	Bundler BundlerConfig `json:"bundler,omitempty"`

	// Revision configures how the current commit is read.
	Revision RevisionConfig `json:"revision,omitempty"`

	// Audit configures the size audit.
	Audit AuditConfig `json:"audit,omitempty"`

	// Dev configures watch mode and the dev server.
	Dev DevConfig `json:"dev,omitempty"`

	// Report configures size report publishing.
	Report ReportConfig `json:"report,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string

	// root is the monorepo root; set even when no file exists.
	root string
}

// BundlerConfig configures the external bundler.
type BundlerConfig struct {
	// Command is the bundler executable.
	Command string `json:"command,omitempty"`

	// Args precede the --environment argument for one-shot builds.
	Args []string `json:"args,omitempty"`

	// WatchArgs precede the --environment argument in watch mode.
	WatchArgs []string `json:"watchArgs,omitempty"`
}

// RevisionConfig configures the revision lookup.
type RevisionConfig struct {
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`
}

// AuditConfig configures the size audit.
type AuditConfig struct {
	// Artifact is the dist file name to audit. "{target}" is replaced by
	// the target name.
	Artifact string `json:"artifact,omitempty"`
}

// DevConfig contains watch mode and dev server settings.
type DevConfig struct {
	// Port is the port the dev server listens on with --serve.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Formats is the format list passed in watch mode when none is given.
	Formats string `json:"formats,omitempty"`

	// DefaultTarget is watched when no name is given. Empty means the
	// first catalog entry.
	DefaultTarget string `json:"defaultTarget,omitempty"`
}

// ReportConfig configures where size reports are uploaded.
type ReportConfig struct {
	Bucket string `json:"bucket,omitempty"`

	// Key is the object key. "{commit}" is replaced by the short commit.
	Key string `json:"key,omitempty"`

	Region string `json:"region,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Packages: DefaultPackages,
		Bundler: BundlerConfig{
			Command:   DefaultBundler,
			Args:      []string{"-c"},
			WatchArgs: []string{"-wc"},
		},
		Revision: RevisionConfig{
			Command: "git",
			Args:    []string{"rev-parse", "HEAD"},
		},
		Audit: AuditConfig{
			Artifact: DefaultArtifact,
		},
		Dev: DevConfig{
			Port:    DefaultDevPort,
			Host:    "localhost",
			Formats: DefaultDevFormats,
		},
		Report: ReportConfig{
			Key: DefaultReportKey,
		},
	}
}

// Load reads configuration from the specified directory.
// A missing pkgbuild.json yields the defaults rooted at dir.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := New()
		cfg.root = dir
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse pkgbuild.json: " + err.Error()).
			WithSuggestion("Check that pkgbuild.json is valid JSON")
	}

	cfg.configPath = path
	cfg.root = filepath.Dir(path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the monorepo root.
func (c *Config) Dir() string {
	return c.root
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Packages == "" {
		c.Packages = DefaultPackages
	}

	// Bundler
	if c.Bundler.Command == "" {
		c.Bundler.Command = DefaultBundler
	}
	if c.Bundler.Args == nil {
		c.Bundler.Args = []string{"-c"}
	}
	if c.Bundler.WatchArgs == nil {
		c.Bundler.WatchArgs = []string{"-wc"}
	}

	// Revision
	if c.Revision.Command == "" {
		c.Revision.Command = "git"
		c.Revision.Args = []string{"rev-parse", "HEAD"}
	}

	if c.Audit.Artifact == "" {
		c.Audit.Artifact = DefaultArtifact
	}

	// Dev
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultDevPort
	}
	if c.Dev.Host == "" {
		c.Dev.Host = "localhost"
	}
	if c.Dev.Formats == "" {
		c.Dev.Formats = DefaultDevFormats
	}

	if c.Report.Key == "" {
		c.Report.Key = DefaultReportKey
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("dev.port must be between 0 and 65535")
	}
	if strings.ContainsAny(c.Audit.Artifact, `/\`) {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("audit.artifact must be a file name inside dist, got " + strconv.Quote(c.Audit.Artifact))
	}
	return nil
}

// PackagesPath returns the absolute path to the packages directory.
func (c *Config) PackagesPath() string {
	if filepath.IsAbs(c.Packages) {
		return c.Packages
	}
	return filepath.Join(c.Dir(), c.Packages)
}

// ArtifactName returns the audited artifact file name for target.
func (c *Config) ArtifactName(target string) string {
	return strings.ReplaceAll(c.Audit.Artifact, "{target}", target)
}

// ReportKey returns the report object key for commit.
func (c *Config) ReportKey(commit string) string {
	return strings.ReplaceAll(c.Report.Key, "{commit}", commit)
}

// DevAddress returns the address string for the dev server.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// isRoot reports whether dir holds pkgbuild.json or a packages directory.
func isRoot(dir string) bool {
	if Exists(dir) {
		return true
	}
	info, err := os.Stat(filepath.Join(dir, DefaultPackages))
	return err == nil && info.IsDir()
}

// FindProjectRoot walks up directories to find the monorepo root.
// Returns the first directory containing pkgbuild.json or packages/.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if isRoot(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeMissingPackages).
				WithDetail("No pkgbuild.json or packages directory found in " + startDir + " or any parent directory").
				WithSuggestion("Run pkgbuild from the monorepo root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration for the monorepo containing the
// current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
