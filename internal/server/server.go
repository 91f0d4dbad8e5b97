// Package server serves the prediction form over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-fraudform/pkg/form"
	"github.com/goliatone/go-fraudform/pkg/render"
	"github.com/goliatone/go-fraudform/pkg/renderers/vanilla"
)

// Service is the scoring backend the server drives. *scoring.Client
// satisfies it.
type Service interface {
	form.Catalog
	form.SchemaSource
	form.Predictor
}

// Option configures the server.
type Option func(*Server)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer overrides the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithPreferredModel sets the model selected when a request names none.
func WithPreferredModel(id string) Option {
	return func(s *Server) {
		s.preferred = id
	}
}

// WithTheme passes a theme to every render.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithLocale selects the chrome language.
func WithLocale(locale string) Option {
	return func(s *Server) {
		s.locale = locale
	}
}

// WithMetrics registers HTTP collectors on reg and serves gatherer at
// /metrics. Passing a nil registry disables both.
func WithMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.registry = reg
		s.gatherer = gatherer
	}
}

// WithRequestTimeout bounds the scoring calls made while serving one request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.requestTimeout = timeout
		}
	}
}

// Server is the web front end. Each request gets its own form.Manager, so no
// form state is shared between visitors.
type Server struct {
	logger         *zap.Logger
	service        Service
	renderer       render.Renderer
	preferred      string
	theme          *theme.RendererConfig
	locale         string
	registry       prometheus.Registerer
	gatherer       prometheus.Gatherer
	metrics        *httpMetrics
	requestTimeout time.Duration
	router         *gin.Engine
}

// New builds the server and its router.
func New(service Service, options ...Option) (*Server, error) {
	if service == nil {
		return nil, errors.New("server: scoring service is required")
	}
	s := &Server{
		logger:         zap.NewNop(),
		service:        service,
		requestTimeout: 30 * time.Second,
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		renderer, err := vanilla.New()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderer = renderer
	}
	if s.registry != nil {
		metrics, err := newHTTPMetrics(s.registry)
		if err != nil {
			return nil, fmt.Errorf("server: register metrics: %w", err)
		}
		s.metrics = metrics
	}
	s.router = s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))
	if s.metrics != nil {
		router.Use(s.metrics.middleware())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		metricsHandler := promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
	router.StaticFS("/assets", http.FS(vanilla.AssetsFS()))

	router.GET("/", s.handleForm)
	router.POST("/", s.handleSubmit)
	router.GET("/api/models", s.handleModels)
	router.GET("/api/models/:id/schema", s.handleSchema)
	router.GET("/api/models/:id/openapi", s.handleOpenAPI)
	router.POST("/api/models/:id/validate", s.handleValidate)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
