package target

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/vango-dev/pkgbuild/internal/errors"
)

// ManifestFileName is the per-package manifest.
const ManifestFileName = "package.json"

// Manifest is the subset of package.json the harness reads.
type Manifest struct {
	Name         string        `json:"name"`
	Version      string        `json:"version,omitempty"`
	Private      bool          `json:"private,omitempty"`
	BuildOptions *BuildOptions `json:"buildOptions,omitempty"`
}

// BuildOptions are the per-package build settings.
type BuildOptions struct {
	// Env forces NODE_ENV for every build of the package.
	Env string `json:"env,omitempty"`

	// Formats lists the output formats the package produces.
	Formats []string `json:"formats,omitempty"`

	// Name is the global variable name of browser builds.
	Name string `json:"name,omitempty"`
}

// Env returns the forced NODE_ENV, or "" when the package declares none.
func (m *Manifest) Env() string {
	if m == nil || m.BuildOptions == nil {
		return ""
	}
	return m.BuildOptions.Env
}

// Catalog lists the buildable packages under a packages root.
type Catalog struct {
	dir   string
	names []string
}

// LoadCatalog scans dir for buildable packages. Entries are kept in
// directory name order. Directories without a manifest are skipped, as are
// private packages that declare no build options.
func LoadCatalog(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(errors.CodeMissingPackages).
			WithDetail("Cannot read packages directory " + dir).
			Wrap(err)
	}

	c := &Catalog{dir: dir}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name(), ManifestFileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		m, err := readManifest(path)
		if err != nil {
			return nil, errors.FromError(err, errors.CodeUnknownTarget).WithTarget(entry.Name())
		}
		if m.Private && m.BuildOptions == nil {
			continue
		}
		c.names = append(c.names, entry.Name())
	}
	sort.Strings(c.names)

	return c, nil
}

// Names returns the catalog entries in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Dir returns the packages root.
func (c *Catalog) Dir() string {
	return c.dir
}

// PackageDir returns the directory of target.
func (c *Catalog) PackageDir(target string) string {
	return filepath.Join(c.dir, target)
}

// DistDir returns the build output directory of target.
func (c *Catalog) DistDir(target string) string {
	return filepath.Join(c.dir, target, "dist")
}

// Manifest returns the manifest of target. It fails with E200 when the
// target has no package directory or manifest.
func (c *Catalog) Manifest(target string) (*Manifest, error) {
	m, err := readManifest(filepath.Join(c.PackageDir(target), ManifestFileName))
	if err != nil {
		return nil, errors.FromError(err, errors.CodeUnknownTarget).WithTarget(target)
	}
	return m, nil
}

// Resolve resolves requested names against the catalog.
func (c *Catalog) Resolve(requested []string, matchAll bool) ([]string, error) {
	return Resolve(c.names, requested, matchAll)
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeUnknownTarget).Wrap(err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CodeUnknownTarget).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that package.json is valid JSON").
			Wrap(err)
	}
	return &m, nil
}
