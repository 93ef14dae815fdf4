// Package server provides the HTTP server for panmotion.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/panmotion/internal/preview"
	"github.com/ayusman/panmotion/internal/server/api"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// App backs the section, view, feature and flow endpoints. Optional.
	App api.Controller
	// Hub serves /api/events when set.
	Hub *Hub
	// Preview serves /api/stream when set.
	Preview *preview.Buffer
}

// Server represents the HTTP server.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
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

	if c := s.config.App; c != nil {
		sections := api.NewSectionHandler(c)
		s.mux.Handle("/api/sections", sections)
		s.mux.Handle("/api/sections/", sections)

		view := api.NewViewHandler(c)
		s.mux.Handle("/api/view", view)
		s.mux.Handle("/api/view/", view)

		flow := api.NewFlowHandler(c)
		s.mux.Handle("/api/flow", flow)
		s.mux.Handle("/api/flow/", flow)

		s.mux.Handle("/api/features", api.NewFeaturesHandler(c))
		s.mux.Handle("/api/dissolve", api.NewDissolveHandler(c.DissolveMask))
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/events", s.config.Hub)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

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

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Hub != nil {
		response["clients"] = s.config.Hub.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
