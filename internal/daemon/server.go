// Package daemon serves the Zahlenpirat HTTP API.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/felixgeelhaar/zahlenpirat/internal/config"
	"github.com/felixgeelhaar/zahlenpirat/internal/engine"
	"github.com/felixgeelhaar/zahlenpirat/internal/history"
	"github.com/felixgeelhaar/zahlenpirat/internal/settings"
	"github.com/felixgeelhaar/zahlenpirat/internal/tasks"
)

// Server is the Zahlenpirat HTTP server
type Server struct {
	cfg     *config.LocalConfig
	server  *http.Server
	router  *http.ServeMux
	handler http.Handler
	limiter ratelimit.RateLimiter

	engine   *engine.Engine
	settings settings.Store
	history  *history.Service
	fallback *history.FallbackSaver
	tasks    *tasks.Generator
}

// ServerConfig wires the services behind the API
type ServerConfig struct {
	Config   *config.LocalConfig
	Engine   *engine.Engine
	Settings settings.Store
	History  *history.Service
	// Fallback is optional; without it /v1/sessions/fallback answers 503
	Fallback *history.FallbackSaver
	Tasks    *tasks.Generator
}

// NewServer creates the server and its middleware chain
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Config == nil || cfg.Engine == nil || cfg.Settings == nil || cfg.History == nil {
		return nil, errors.New("daemon: config, engine, settings and history are required")
	}
	gen := cfg.Tasks
	if gen == nil {
		gen = tasks.NewGenerator()
	}

	s := &Server{
		cfg:      cfg.Config,
		router:   http.NewServeMux(),
		engine:   cfg.Engine,
		settings: cfg.Settings,
		history:  cfg.History,
		fallback: cfg.Fallback,
		tasks:    gen,
	}
	s.setupRoutes()

	var handler http.Handler = s.router
	if rl := cfg.Config.RateLimit; rl.Enabled {
		s.limiter = ratelimit.New(&ratelimit.Config{
			Rate:     rl.RequestsPerSecond,
			Burst:    rl.Burst,
			Interval: time.Second,
		})
		handler = rateLimitMiddleware(s.limiter)(handler)
	}
	handler = loggingMiddleware(handler)
	handler = correlationIDMiddleware(handler)
	handler = corsMiddleware(handler)
	s.handler = recoveryMiddleware(handler)

	s.server = &http.Server{
		Addr:         cfg.Config.Daemon.Addr(),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		notFound(w, r, "no route for "+r.Method+" "+r.URL.Path)
	})
	s.router.HandleFunc("GET /v1/health", s.handleHealth)

	// Chat
	s.router.HandleFunc("POST /v1/flow", s.handleFlow)
	s.router.HandleFunc("GET /v1/current", s.handleCurrent)
	s.router.HandleFunc("GET /v1/start", s.handleStart)

	// Persistent settings
	s.router.HandleFunc("GET /v1/settings", s.handleGetSettings)
	s.router.HandleFunc("POST /v1/settings", s.handleSetSettings)
	s.router.HandleFunc("POST /v1/settings/set", s.handleSetSingle)
	s.router.HandleFunc("POST /v1/settings/reset", s.handleResetSettings)

	// History
	s.router.HandleFunc("POST /v1/sessions", s.handleSaveSession)
	s.router.HandleFunc("POST /v1/sessions/extended", s.handleSaveExtended)
	s.router.HandleFunc("POST /v1/sessions/fallback", s.handleSaveWithFallback)
	s.router.HandleFunc("POST /v1/sessions/end", s.handleEndSession)
	s.router.HandleFunc("POST /v1/sessions/abort", s.handleAbortSession)
	s.router.HandleFunc("GET /v1/history", s.handleHistory)
	s.router.HandleFunc("GET /v1/leaderboard", s.handleLeaderboard)

	// Tasks
	s.router.HandleFunc("GET /v1/tasks", s.handleTasks)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	slog.Info("starting zahlenpirat daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.Storage.Backend,
		"fallback", s.fallback != nil,
	)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")
	err := s.server.Shutdown(ctx)
	s.Close()
	return err
}

// Close releases the rate limiter
func (s *Server) Close() {
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			slog.Warn("failed to close rate limiter", "error", err)
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Zahlenpirat Backend läuft 🎉",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"sessions":  s.engine.SessionCount(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
