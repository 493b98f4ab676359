// Package server provides the HTTP API for the form-filling service.
// It exposes REST endpoints for filling the SSA-3373 form, inspecting
// templates, and reading the default line-limit table.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/formworks/ssa-form-filler/internal/pdf"
)

// Server represents the HTTP server for the form-filling API.
type Server struct {
	httpServer *http.Server
	service    *pdf.Service
	config     *Config

	// mu protects server state
	mu      sync.RWMutex
	running bool
}

// Config holds configuration for the HTTP server.
type Config struct {
	// Host is the interface to bind to (default: "0.0.0.0")
	Host string

	// Port is the port to listen on (default: 8000)
	Port int

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	IdleTimeout time.Duration

	// EnableLogging enables request logging middleware
	EnableLogging bool
}

// DefaultConfig returns sensible defaults for the HTTP server.
func DefaultConfig() *Config {
	return &Config{
		Host:          "0.0.0.0",
		Port:          8000,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   60 * time.Second,
		EnableLogging: true,
	}
}

// NewServer creates a new HTTP server around the given service.
func NewServer(config *Config, service *pdf.Service) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	// Apply defaults for zero values
	if config.Host == "" {
		config.Host = "0.0.0.0"
	}
	if config.Port == 0 {
		config.Port = 8000
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 30 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = 60 * time.Second
	}

	return &Server{
		service: service,
		config:  config,
	}
}

// Address returns the server address in host:port format.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Handler builds the full handler chain: routes wrapped in CORS, logging,
// and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /form-info", s.handleFormInfo)
	mux.HandleFunc("GET /line-limits", s.handleLineLimits)
	mux.HandleFunc("GET /templates", s.handleTemplates)
	mux.HandleFunc("POST /fill-ssa-form", s.handleFillForm)
	mux.HandleFunc("POST /fill-ssa-form-gpt", s.handleFillFormJSON)

	var handler http.Handler = mux
	handler = CORSMiddleware(handler)
	if s.config.EnableLogging {
		handler = LoggingMiddleware(handler)
	}
	handler = RecoveryMiddleware(handler)

	return handler
}

// Start starts the HTTP server in a goroutine.
// It returns immediately after starting. Use Shutdown() to stop it.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	s.httpServer = &http.Server{
		Addr:         s.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.running = true

	// Use error channel to detect binding failures
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[http] Starting server on %s", s.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[http] Server error: %v", err)
			errCh <- err
		}
		close(errCh)
	}()

	// Wait briefly to catch immediate binding errors (e.g., port in use)
	select {
	case err := <-errCh:
		s.running = false
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Shutdown gracefully shuts down the server with a timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	log.Printf("[http] Shutting down server...")
	s.running = false

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Run starts the server and blocks until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
