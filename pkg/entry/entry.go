// Package entry selects the CommonJS artifact a host program loads for a
// built target.
//
// The selection is made once, when the Entry is created, and never changes
// afterwards:
//
//	e := entry.New(entry.ModeFromEnv(), "packages/cli/dist", "cli")
//	src, err := e.Read()
package entry

import (
	"os"
	"path/filepath"
)

// Mode is the build flavour an Entry binds to.
type Mode int

const (
	Development Mode = iota
	Production
)

func (m Mode) String() string {
	if m == Production {
		return "production"
	}
	return "development"
}

// ParseMode maps a NODE_ENV value to a Mode. Only "production" selects
// Production.
func ParseMode(nodeEnv string) Mode {
	if nodeEnv == "production" {
		return Production
	}
	return Development
}

// ModeFromEnv reads NODE_ENV.
func ModeFromEnv() Mode {
	return ParseMode(os.Getenv("NODE_ENV"))
}

// Entry is a target's selected artifact.
type Entry struct {
	mode   Mode
	target string
	path   string
}

// New binds target's artifact in distDir for mode: <target>.cjs.prod.js in
// production, <target>.cjs.js otherwise.
func New(mode Mode, distDir, target string) *Entry {
	return &Entry{
		mode:   mode,
		target: target,
		path:   filepath.Join(distDir, Filename(mode, target)),
	}
}

// Filename returns the artifact name for mode.
func Filename(mode Mode, target string) string {
	if mode == Production {
		return target + ".cjs.prod.js"
	}
	return target + ".cjs.js"
}

func (e *Entry) Mode() Mode       { return e.mode }
func (e *Entry) Target() string   { return e.target }
func (e *Entry) Path() string     { return e.path }
func (e *Entry) Filename() string { return filepath.Base(e.path) }

// Exists reports whether the selected artifact has been built.
func (e *Entry) Exists() bool {
	info, err := os.Stat(e.path)
	return err == nil && !info.IsDir()
}

// Read returns the selected artifact's source.
func (e *Entry) Read() ([]byte, error) {
	return os.ReadFile(e.path)
}
