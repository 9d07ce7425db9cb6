package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apperrors "github.com/kbukum/consul-service/errors"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/observability"
	"github.com/kbukum/consul-service/server/endpoint"
	"github.com/kbukum/consul-service/server/middleware"
)

// Server is the HTTP server backed by Gin and served over HTTP/1.1 and h2c.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger
	middleware []middleware.Middleware

	mu       sync.Mutex
	listener net.Listener
}

// New creates a new Server. The Gin engine is created with a NOT_FOUND
// fallback but no middleware; call ApplyMiddleware to install the standard stack.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.NoRoute(func(c *gin.Context) {
		RespondWithError(c, apperrors.NotFound("route", c.Request.URL.Path))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Use appends server-level middleware. It applies to every request, including
// ones Gin answers with NoRoute. Must be called before Start.
func (s *Server) Use(mw ...middleware.Middleware) {
	s.middleware = append(s.middleware, mw...)
}

// Handler returns the full handler chain: server-level middleware around the
// Gin engine, wrapped for HTTP/2 cleartext.
func (s *Server) Handler() http.Handler {
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	return h2c.NewHandler(middleware.Chain(s.middleware...)(s.engine), h2s)
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener
	s.httpServer.Handler = s.Handler()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server, waiting at most ShutdownTimeout for
// in-flight requests to drain.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.listener = nil
	if err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Running reports whether the server currently holds a bound listener.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// Addr returns the bound address while running, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// ApplyMiddleware installs the standard middleware stack: request-ID and
// request logging at the server level, request metrics and panic recovery on
// the Gin engine. metrics may be nil.
func (s *Server) ApplyMiddleware(metrics *observability.Metrics) {
	s.Use(middleware.RequestID(), middleware.RequestLogger(s.log))
	s.engine.Use(middleware.Metrics(metrics), middleware.Recovery(s.log))
}

// RegisterDefaultEndpoints registers /health, /ready and /info, plus /metrics
// when metricsHandler is non-nil.
func (s *Server) RegisterDefaultEndpoints(serviceName, serviceVersion string, checker endpoint.HealthChecker, metricsHandler http.Handler) {
	s.engine.GET("/health", endpoint.Health())
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName, serviceVersion))
	if metricsHandler != nil {
		s.engine.GET("/metrics", endpoint.Metrics(metricsHandler))
	}
}
