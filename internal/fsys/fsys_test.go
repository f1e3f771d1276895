package fsys

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOS(t *testing.T) {
	dir := t.TempDir()
	dist := filepath.Join(dir, "dist")
	file := filepath.Join(dist, "a.js")

	if err := os.MkdirAll(dist, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var fs FS = OS{}
	if !fs.Exists(file) {
		t.Error("Exists should be true for a written file")
	}
	data, err := fs.ReadFile(file)
	if err != nil || string(data) != "x" {
		t.Errorf("ReadFile = %q, %v", data, err)
	}

	if err := fs.RemoveAll(dist); err != nil {
		t.Fatalf("RemoveAll error: %v", err)
	}
	if fs.Exists(dist) {
		t.Error("dist should be gone")
	}
	if err := fs.RemoveAll(dist); err != nil {
		t.Errorf("RemoveAll on a missing path should succeed, got %v", err)
	}
}
