package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soundprediction/linkpath"
	"github.com/soundprediction/linkpath/pkg/config"
	"github.com/soundprediction/linkpath/pkg/server/handlers"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Options holds the optional collaborators of a Server.
type Options struct {
	// Logger receives request logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Gatherer is served on /metrics. The endpoint is omitted when nil.
	Gatherer prometheus.Gatherer

	// TracerProvider traces requests. The global provider is used when nil.
	TracerProvider trace.TracerProvider

	// ProbeTitle is resolved by the readiness checks.
	ProbeTitle string
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	finder linkpath.PathFinder
	opts   Options
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, finder linkpath.PathFinder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		config: cfg,
		finder: finder,
		opts:   opts,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(otelgin.Middleware("linkpath", otelgin.WithTracerProvider(s.tracerProvider())))
	s.router.Use(requestLogger(s.opts.Logger))
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) tracerProvider() trace.TracerProvider {
	if s.opts.TracerProvider != nil {
		return s.opts.TracerProvider
	}
	return otel.GetTracerProvider()
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.finder, s.opts.ProbeTitle)
	pathHandler := handlers.NewPathHandler(s.finder, s.opts.Logger)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	if s.opts.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/path", pathHandler.FindPath)
		v1.GET("/links/:title", pathHandler.GetLinks)
		v1.GET("/resolve/:title", pathHandler.Resolve)
	}
}

// Handler returns the configured router. Setup must have been called.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	s.opts.Logger.Info("Starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.opts.Logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP())
	}
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
