package server

import (
	"context"
	"fmt"
	"net/http"

	"AlertConsoleAPI/internal/config"
	"AlertConsoleAPI/internal/handler"
	"AlertConsoleAPI/internal/logger"
	"AlertConsoleAPI/internal/metrics"
	"AlertConsoleAPI/internal/middleware"
	"AlertConsoleAPI/internal/session"

	"github.com/gorilla/mux"
)

// OpsPrefixes are served without a session alongside middleware.DefaultPublicPrefixes.
var OpsPrefixes = []string{"/health", "/metrics"}

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	cfg        *config.Config
	log        *logger.Logger
	sessions   *session.Cookies
	metrics    *metrics.Metrics
}

func New(cfg *config.Config, log *logger.Logger, sessions *session.Cookies, m *metrics.Metrics) *Server {
	router := mux.NewRouter()

	server := &Server{
		router:   router,
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		metrics:  m,
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}

	return server
}

// PublicPrefixes is the guard's allow-list for this server.
func PublicPrefixes() []string {
	public := make([]string, 0, len(middleware.DefaultPublicPrefixes)+len(OpsPrefixes))
	public = append(public, middleware.DefaultPublicPrefixes...)
	return append(public, OpsPrefixes...)
}

func (s *Server) RegisterHandlers(
	proxyHandler *handler.ProxyHandler,
	authHandler *handler.AuthHandler,
	consoleHandler *handler.ConsoleHandler,
	triggerHandler *handler.TriggerHandler,
	pageHandler *handler.PageHandler,
	healthHandler *handler.HealthHandler,
) {
	api := s.router.PathPrefix("/api").Subrouter()

	authHandler.RegisterRoutes(api)
	consoleHandler.RegisterRoutes(api)
	triggerHandler.RegisterRoutes(api)
	proxyHandler.RegisterRoutes(api)

	healthHandler.RegisterRoutes(s.router)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	pageHandler.RegisterRoutes(s.router)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"Not found"}`))
	})

	// The chain wraps the router rather than using router.Use so the guard also sees
	// paths no route matches.
	var h http.Handler = s.router
	h = middleware.Guard(s.sessions, PublicPrefixes(), s.log)(h)
	if s.cfg.Security.EnableRateLimit {
		h = middleware.RateLimit(s.cfg.Security.RateLimitPerSecond, s.cfg.Security.RateLimitBurst)(h)
	}
	h = middleware.CORS(s.cfg.Security.CORSAllowedOrigins, s.cfg.Security.CORSAllowedMethods)(h)
	h = middleware.RequestLogger(s.log, s.metrics)(h)
	h = middleware.Recovery(s.log)(h)
	s.httpServer.Handler = h

	s.log.Info("All handlers registered")
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Info("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}
