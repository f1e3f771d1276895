package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/pkgbuild/internal/buildenv"
	"github.com/vango-dev/pkgbuild/internal/errors"
)

func TestWatcher_Modified(t *testing.T) {
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "cli.global.js")
	if err := os.WriteFile(testFile, []byte("var a"), 0644); err != nil {
		t.Fatal(err)
	}

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Interval: 20 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	later := time.Now().Add(time.Second)
	if err := os.WriteFile(testFile, []byte("var a = 1"), 0644); err != nil {
		t.Fatal(err)
	}
	os.Chtimes(testFile, later, later)

	select {
	case change := <-changes:
		if change.Type != ChangeScript {
			t.Errorf("Type = %v, want ChangeScript", change.Type)
		}
		if change.Path != testFile {
			t.Errorf("Path = %q, want %q", change.Path, testFile)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for change")
	}

	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("watcher still running after Stop")
	}
}

func TestWatcher_CreatedDirectory(t *testing.T) {
	dist := filepath.Join(t.TempDir(), "dist")

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{dist},
		Interval: 20 * time.Millisecond,
	})
	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	os.MkdirAll(dist, 0755)
	newFile := filepath.Join(dist, "cli.d.ts")
	if err := os.WriteFile(newFile, []byte("export {}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case change := <-changes:
		if change.Type != ChangeTypes || change.Path != newFile || change.Removed {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for new file")
	}
}

func TestWatcher_Removed(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "cli.js.map")
	os.WriteFile(file, []byte("{}"), 0644)

	watcher := NewWatcher(WatcherConfig{Paths: []string{tmpDir}})
	var got []Change
	watcher.OnChange(func(c Change) { got = append(got, c) })

	watcher.scanInitial()
	os.Remove(file)
	watcher.checkForChanges()

	want := []Change{{Path: file, Type: ChangeSourceMap, Removed: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_Ignore(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{
		Ignore: []string{"*.tmp", "cache"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"dist/cli.js.tmp", true},
		{"dist/cache", true},
		{"dist/cli.js", false},
		{"dist/cachefile.js", false},
	}
	for _, tt := range tests {
		if got := watcher.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	tests := map[string]ChangeType{
		"cli.global.js":    ChangeScript,
		"cli.esm.mjs":      ChangeScript,
		"cli.cjs.prod.cjs": ChangeScript,
		"cli.d.ts":         ChangeTypes,
		"cli.js.map":       ChangeSourceMap,
		"README.md":        ChangeAsset,
	}
	for path, want := range tests {
		if got := classifyChange(path); got != want {
			t.Errorf("classifyChange(%q) = %v, want %v", path, got, want)
		}
	}
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dist := t.TempDir()
	os.WriteFile(filepath.Join(dist, "cli.global.js"), []byte("console.log(1)"), 0644)

	env := buildenv.Watch("cli", "", "global", "abc1234")
	return NewServer(ServerOptions{Target: "cli", Env: env, DistDir: dist}), dist
}

func TestServer_ServesDist(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/dist/cli.global.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if string(body) != "console.log(1)" {
		t.Errorf("body = %q", body)
	}

	resp, err = http.Get(ts.URL + "/dist/missing.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_Status(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/_pkgbuild/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Target != "cli" || status.Commit != "abc1234" {
		t.Errorf("status = %+v", status)
	}
	if status.Environment != "COMMIT:abc1234,TARGET:cli,FORMATS:global" {
		t.Errorf("Environment = %q", status.Environment)
	}
	if status.LastChange != nil {
		t.Error("LastChange should be empty before any change")
	}
}

func TestServer_ClientScript(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/_pkgbuild/client.js")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "/_pkgbuild/reload") {
		t.Error("client script does not connect to the reload endpoint")
	}
}

func TestServer_ReloadBroadcast(t *testing.T) {
	s, dist := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_pkgbuild/reload"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for s.reloadServer.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s.reloadServer.ClientCount() != 1 {
		t.Fatal("client did not register")
	}

	var reloaded int
	s.options.OnReload = func(change Change, clients int) { reloaded = clients }
	s.handleChange(Change{Path: filepath.Join(dist, "cli.global.js"), Type: ChangeScript})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(ReloadMessage{Type: ReloadTypeFull, File: "cli.global.js"}, msg); diff != "" {
		t.Errorf("message mismatch (-want +got):\n%s", diff)
	}
	if reloaded != 1 {
		t.Errorf("OnReload clients = %d, want 1", reloaded)
	}

	status := s.Status()
	if status.Changes != 1 || status.LastFile != "cli.global.js" || status.LastChange == nil {
		t.Errorf("status = %+v", status)
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestBundler_Argv(t *testing.T) {
	b := &Bundler{
		Command: "rollup",
		Args:    []string{"-wc"},
		Env:     buildenv.Watch("cli", "", "global", "abc1234"),
	}
	want := []string{"-wc", "--environment", "COMMIT:abc1234,TARGET:cli,FORMATS:global"}
	if diff := cmp.Diff(want, b.Argv()); diff != "" {
		t.Errorf("Argv mismatch (-want +got):\n%s", diff)
	}
}

func TestBundler_ExitFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	var stderr bytes.Buffer
	b := &Bundler{
		Command: "sh",
		Args:    []string{"-c", "echo broken >&2; exit 4", "sh"},
		Env:     buildenv.Watch("cli", "", "global", "abc1234"),
		Stderr:  &stderr,
	}

	err := b.Run(context.Background())

	var e *errors.Error
	if !errors.As(err, &e) || e.Code != errors.CodeBundlerFailed {
		t.Fatalf("error = %v, want E210", err)
	}
	if e.Target != "cli" || e.ExitCode != 4 {
		t.Errorf("Target = %q, ExitCode = %d", e.Target, e.ExitCode)
	}
	if !strings.Contains(stderr.String(), "broken") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestBundler_StopsOnCancel(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	b := &Bundler{
		Command: "sh",
		Args:    []string{"-c", "sleep 30", "sh"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error = %v, want nil on cancel", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("bundler was not stopped")
	}
}

func TestSession_BundlerExitStopsServer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	session := NewSession(Options{
		Target:  "cli",
		Command: "sh",
		Args:    []string{"-c", "exit 0", "sh"},
		Env:     buildenv.Watch("cli", "", "global", "abc1234"),
		DistDir: t.TempDir(),
		Serve:   true,
		Addr:    "127.0.0.1:0",
	})
	if session.Server() == nil {
		t.Fatal("Serve should create a server")
	}

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error = %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("session did not stop after the bundler exited")
	}
}
