// Package web provides the HTTP JSON API for the report consolidator.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/reportstack/consolidator/internal/config"
	"github.com/reportstack/consolidator/internal/core"
	"github.com/reportstack/consolidator/internal/session"
	authmw "github.com/reportstack/consolidator/internal/web/middleware"
)

// Server is the HTTP server for the consolidator API.
type Server struct {
	cfg      *config.Config
	service  *core.Service
	sessions *session.Manager
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a Server wired to the given service and session
// manager.
func NewServer(service *core.Service, sessions *session.Manager, cfg *config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		service:  service,
		sessions: sessions,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes. Everything except health,
// registration, and login requires a session token.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authmw.SessionAuth(s.sessions))

			r.Post("/logout", s.handleLogout)

			// Target schema
			r.Get("/schema", s.handleGetSchema)
			r.Post("/schema/fields", s.handleAddField)
			r.Put("/schema/fields/{index}", s.handleRenameField)
			r.Delete("/schema/fields/{name}", s.handleRemoveField)

			// Mapping presets
			r.Get("/presets", s.handleListPresets)
			r.Post("/presets", s.handleCreatePreset)
			r.Get("/presets/{presetID}", s.handleGetPreset)
			r.Put("/presets/{presetID}", s.handleUpdatePreset)
			r.Delete("/presets/{presetID}", s.handleDeletePreset)

			// Upload & ingestion
			r.Post("/uploads/inspect", s.handleInspectUpload)
			r.Post("/uploads", s.handleUpload)

			// Segments
			r.Get("/batches", s.handleListBatches)
			r.Delete("/batches/{batchID}", s.handleDeleteBatch)
			r.Get("/batches/{batchID}/export", s.handleExportBatch)
			r.Post("/batches/archive", s.handleArchiveBatches)
			r.Post("/archive/clear", s.handleClearArchive)

			// Combined export & reset
			r.Get("/export", s.handleExport)
			r.Post("/reset", s.handleReset)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","code":"RATE001"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
