package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/safebadge/internal/api/auth"
	"github.com/jon4hz/safebadge/internal/api/handler"
	"github.com/jon4hz/safebadge/internal/config"
	"github.com/jon4hz/safebadge/internal/engine"
	"github.com/jon4hz/safebadge/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	engine       *engine.Engine
	metrics      *metrics.Metrics
	authProvider *auth.DemoProvider
}

// New creates the API server. Metrics are optional.
func New(cfg *config.Config, e *engine.Engine, m *metrics.Metrics, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if e == nil {
		return nil, fmt.Errorf("engine is required")
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ginEngine := gin.New()
	ginEngine.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(),
		m.Middleware(),
		gzip.Gzip(gzip.DefaultCompression),
	)

	s := &Server{
		cfg:          cfg,
		ginEngine:    ginEngine,
		engine:       e,
		metrics:      m,
		authProvider: auth.NewDemoProvider(e, cfg.Demo.Username),
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	h := handler.New(s.engine)

	s.ginEngine.GET("/healthz", h.Healthz)
	if s.metrics != nil {
		s.ginEngine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.ginEngine.Group("/api")
	api.Use(s.authProvider.RequireAuth())

	api.GET("/user", h.GetUser)

	api.GET("/contacts", h.ListContacts)
	api.POST("/contacts", h.CreateContact)
	api.PUT("/contacts/:id", h.UpdateContact)
	api.DELETE("/contacts/:id", h.DeleteContact)

	api.GET("/device-settings", h.GetSettings)
	api.PUT("/device-settings", h.UpdateSettings)
	api.PUT("/device-settings/battery", h.UpdateBattery)
	api.PUT("/device-settings/location", h.UpdateLocation)

	api.GET("/alerts", h.ListAlerts)
	api.POST("/alerts", h.CreateAlert)
	api.GET("/alerts/:id", h.GetAlert)
	api.PUT("/alerts/:id/deactivate", h.DeactivateAlert)

	api.GET("/history", h.GetHistory)
}

// Handler returns the http.Handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves the API until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "listen", s.cfg.Listen)
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

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	log.Info("Shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}
