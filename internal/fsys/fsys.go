// Package fsys is the narrow filesystem surface the build pipeline uses.
package fsys

import "os"

// FS removes build output and reads artifacts.
type FS interface {
	// RemoveAll removes path and everything below it. A missing path is
	// not an error.
	RemoveAll(path string) error

	// Exists reports whether path exists.
	Exists(path string) bool

	// ReadFile returns the contents of path.
	ReadFile(path string) ([]byte, error)
}

// OS is the operating system filesystem.
type OS struct{}

var _ FS = OS{}

func (OS) RemoveAll(path string) error { return os.RemoveAll(path) }

func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
