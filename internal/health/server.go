// Package health serves the plain-text liveness endpoints. It runs either
// standalone (the web subcommand) or alongside the bot, and answers hosting
// platform health probes.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/keepmind9/rosebot/internal/logger"
)

// Server is the liveness web service
type Server struct {
	httpServer *http.Server
	botRunning atomic.Bool
}

// NewServer creates a health server listening on the given port
func NewServer(port int) *Server {
	s := &Server{}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return s
}

// SetBotRunning records whether the polling loop is alive; /status reports it
func (s *Server) SetBotRunning(running bool) {
	s.botRunning.Store(running)
}

// Start runs the server until Shutdown is called. It blocks, so callers run
// it in a goroutine when the bot runs alongside.
func (s *Server) Start() error {
	logger.WithField("address", s.httpServer.Addr).Info("health-server-listening")

	// When Shutdown() is called, ListenAndServe returns ErrServerClosed
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Errorf("health-server-error: %v", err)
		return fmt.Errorf("health server failed: %w", err)
	}

	logger.Info("health-server-stopped")
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprint(w, "🌹 Rose Admin Bot - Web Service is Running!")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "✅ OK")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state := "standby"
	if s.botRunning.Load() {
		state = "polling"
	}
	fmt.Fprintf(w, "🤖 Bot Status: %s", state)
}
