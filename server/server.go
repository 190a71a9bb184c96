package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/server/endpoint"
	"github.com/kbukum/scribekit/server/middleware"
)

// Server serves the transcription API: Gin routes behind the middleware
// stack, spoken as HTTP/1.1 or cleartext HTTP/2.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New builds the server. Gin runs in debug mode only when the process log
// level is debug or lower. Routes are added with RegisterDefaultEndpoints
// and RegisterRoutes.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)
	engine := gin.New()

	// Outermost first.
	stack := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.CORS(&cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RateLimit(cfg.RateLimit),
		middleware.RequestLogger(log.WithComponent("http")),
	)
	h2 := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute}

	seconds := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           h2c.NewHandler(stack(engine), h2),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       seconds(cfg.ReadTimeout),
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       seconds(cfg.IdleTimeout),
		},
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// Handler is the root handler with every middleware applied.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start binds the listen address and serves in the background. It returns
// once the port is bound.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("HTTP server started", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop stops accepting connections and waits until ctx ends for in-flight
// transcriptions to finish.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr is the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// RegisterDefaultEndpoints registers the probe, health, metrics and version
// endpoints. jobs may be nil.
func (s *Server) RegisterDefaultEndpoints(serviceName string, jobs endpoint.JobStats, checkers ...observability.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checkers...))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checkers...))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/metrics", endpoint.Metrics(jobs))
	s.engine.GET("/version", endpoint.Version(serviceName))
}
