package dev

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/pkgbuild/internal/buildenv"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Target is the package being watched.
	Target string

	// Env is the watch environment, reported by the status endpoint.
	Env buildenv.Environment

	// DistDir is served at /dist/ and watched for changes.
	DistDir string

	// Addr is the listen address, e.g. "localhost:3000".
	Addr string

	// Interval is the polling period of the dist watcher.
	Interval time.Duration

	Logger *slog.Logger

	// OnReload is called after browsers were notified.
	OnReload func(change Change, clients int)
}

// Status is the JSON body of /_pkgbuild/status.
type Status struct {
	Target      string     `json:"target"`
	Commit      string     `json:"commit,omitempty"`
	Environment string     `json:"environment"`
	StartedAt   time.Time  `json:"startedAt"`
	Clients     int        `json:"clients"`
	Changes     int        `json:"changes"`
	LastChange  *time.Time `json:"lastChange,omitempty"`
	LastFile    string     `json:"lastFile,omitempty"`
}

// Server serves a target's output with live reload.
type Server struct {
	options      ServerOptions
	reloadServer *ReloadServer
	watcher      *Watcher
	logger       *slog.Logger
	startedAt    time.Time

	mu         sync.Mutex
	changes    int
	lastChange time.Time
	lastFile   string
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		options:      options,
		reloadServer: NewReloadServer(),
		watcher: NewWatcher(WatcherConfig{
			Paths:    []string{options.DistDir},
			Interval: options.Interval,
		}),
		logger:    logger.With("component", "dev"),
		startedAt: time.Now(),
	}
	s.watcher.OnChange(s.handleChange)
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/_pkgbuild/status", s.handleStatus)
	r.Get("/_pkgbuild/reload", s.reloadServer.HandleWebSocket)
	r.Get("/_pkgbuild/client.js", handleClientScript)
	r.Handle("/dist/*", http.StripPrefix("/dist/", http.FileServer(http.Dir(s.options.DistDir))))

	return r
}

// Start serves until ctx is done. It returns an error only when the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.options.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.watcher.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	s.logger.Info("serving", "target", s.options.Target, "url", "http://"+ln.Addr().String()+"/dist/")

	select {
	case <-ctx.Done():
		s.shutdown(httpServer)
		return nil
	case err := <-errCh:
		s.shutdown(httpServer)
		return err
	}
}

func (s *Server) shutdown(httpServer *http.Server) {
	s.watcher.Stop()
	s.reloadServer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}

// Status reports the current session state.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	commit, _ := s.options.Env.Lookup("COMMIT")
	status := Status{
		Target:      s.options.Target,
		Commit:      commit,
		Environment: s.options.Env.String(),
		StartedAt:   s.startedAt,
		Clients:     s.reloadServer.ClientCount(),
		Changes:     s.changes,
		LastFile:    s.lastFile,
	}
	if !s.lastChange.IsZero() {
		last := s.lastChange
		status.LastChange = &last
	}
	return status
}

func (s *Server) handleChange(change Change) {
	file := filepath.Base(change.Path)

	s.mu.Lock()
	s.changes++
	s.lastChange = time.Now()
	s.lastFile = file
	s.mu.Unlock()

	if change.Removed {
		s.logger.Debug("output removed", "file", file)
		return
	}

	s.reloadServer.NotifyReload(file)
	clients := s.reloadServer.ClientCount()
	s.logger.Info("output changed", "file", file, "clients", clients)
	if s.options.OnReload != nil {
		s.options.OnReload(change, clients)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Status())
}

func handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write([]byte(ClientScript))
}
