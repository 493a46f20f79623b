// Package server exposes the monitor's HTTP surface: the latest sample at
// /metrics, the stored history at /history, a health probe at /healthz, and
// the embedded browser dashboard at /.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/opspulse/opspulse/collectors/sysmetrics"
	"github.com/opspulse/opspulse/storage"
)

//go:embed static/index.html
var staticFS embed.FS

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Current holds the most recent sample, guarded for concurrent access: the
// daemon loop writes it while HTTP handlers read it.
type Current struct {
	mu     sync.RWMutex
	sample *sysmetrics.SystemSample
}

// Set replaces the current sample.
func (c *Current) Set(sample *sysmetrics.SystemSample) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sample = sample
}

// Get returns the current sample, or nil before the first collection.
func (c *Current) Get() *sysmetrics.SystemSample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sample
}

// Server serves the monitor's HTTP API and the embedded dashboard page.
type Server struct {
	addr       string
	current    *Current
	store      *storage.Store
	logger     *slog.Logger
	mux        *http.ServeMux
	httpServer *http.Server
}

// New creates a Server listening on addr, reading from current and store.
// If logger is nil, a no-op logger is used.
func New(addr string, current *Current, store *storage.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		addr:    addr,
		current: current,
		store:   store,
		logger:  logger,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// routes registers all HTTP handlers on the server mux.
func (s *Server) routes() {
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.HandleFunc("/history", s.handleHistory)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/", s.handleIndex)
}

// Handler returns the server's root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleMetrics serves the latest sample as JSON. Before the first
// collection completes it responds 503.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sample := s.current.Get()
	if sample == nil {
		writeError(w, http.StatusServiceUnavailable, "no sample collected yet")
		return
	}

	writeJSON(w, http.StatusOK, sample)
}

// handleHistory serves the stored history as a JSON array, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	samples, err := s.store.Load()
	if err != nil {
		s.logger.Error("history load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	if samples == nil {
		samples = []sysmetrics.SystemSample{}
	}

	writeJSON(w, http.StatusOK, samples)
}

// handleHealthz reports whether the monitor has produced a sample yet.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status": "ok",
	}

	if sample := s.current.Get(); sample != nil {
		health["last_sample"] = sample.Timestamp.Format(time.RFC3339)
	} else {
		health["status"] = "starting"
	}

	writeJSON(w, http.StatusOK, health)
}

// handleIndex serves the embedded browser dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// writeJSON writes v as a JSON response with permissive CORS, so the
// dashboard page can be served from elsewhere during development.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Start begins serving in a background goroutine and returns immediately.
func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	s.logger.Info("web server listening", "addr", s.addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server failed", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server, waiting up to shutdownTimeout for
// in-flight requests.
func (s *Server) Shutdown() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
