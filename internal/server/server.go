// Package server provides the HTTP surface of the pose demo.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/heropose/internal/gesture"
	"github.com/ayusman/heropose/internal/publish"
	"github.com/ayusman/heropose/internal/server/api"
	"github.com/ayusman/heropose/internal/store"
	"github.com/ayusman/heropose/internal/theme"
)

const (
	shutdownTimeout = 5 * time.Second
	latestTimeout   = time.Second
)

// Pipeline is the part of the running application the server exposes.
type Pipeline interface {
	api.ThemeSwitcher
	FrameSource
	IsEnabled() bool
	SetEnabled(enabled bool)
	Label() gesture.Label
}

// Config holds the server configuration. Every field is optional; routes
// whose dependency is missing are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Pipeline   Pipeline
	Classifier *gesture.Classifier
	Hub        *Hub

	// Published adds the last published label change to /api/status.
	Published publish.LatestSource

	// Theme is used by /api/classify and /api/labels when no pipeline runs.
	Theme *theme.Theme
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Classifier == nil {
		config.Classifier = gesture.NewClassifier(gesture.DefaultThresholds())
	}
	if config.Theme == nil {
		config.Theme = theme.Hero()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	var themes api.ThemeSource = api.StaticTheme{T: s.config.Theme}
	if s.config.Pipeline != nil {
		themes = s.config.Pipeline
	}
	s.mux.Handle("/api/classify", api.NewClassifyHandler(s.config.Classifier, themes))
	s.mux.Handle("/api/labels", api.NewLabelsHandler(themes))
	s.mux.Handle("/api/theme", api.NewThemeHandler(themes))

	if s.config.Store != nil {
		events := api.NewEventsHandler(s.config.Store)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)
	}

	if s.config.Pipeline != nil {
		s.mux.HandleFunc("/api/status", s.handleStatus)
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Pipeline))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/ws", s.config.Hub)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(s.start).String(),
		"pipeline": s.config.Pipeline != nil,
	}
	writeJSON(w, http.StatusOK, response)
}

type statusResponse struct {
	Enabled   bool             `json:"enabled"`
	Label     gesture.Label    `json:"label"`
	Theme     string           `json:"theme"`
	Published *publish.Message `json:"published,omitempty"`
}

type setStatusRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleStatus reports the pipeline state on GET and toggles detection on PUT.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	p := s.config.Pipeline
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "enabled is required"})
			return
		}
		p.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Enabled:   p.IsEnabled(),
		Label:     p.Label(),
		Theme:     p.Theme().Name,
		Published: s.latestPublished(r.Context()),
	})
}

// latestPublished returns nil when nothing was published or the publisher
// cannot be reached.
func (s *Server) latestPublished(ctx context.Context) *publish.Message {
	if s.config.Published == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, latestTimeout)
	defer cancel()

	msg, err := s.config.Published.Latest(ctx)
	if err != nil {
		if !errors.Is(err, publish.ErrNoMessage) {
			slog.Debug("latest published message unavailable", "error", err)
		}
		return nil
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully. Request
// contexts derive from ctx so long-lived streams end with it.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.config.Hub != nil {
		s.config.Hub.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("http server stopped")
	return nil
}
