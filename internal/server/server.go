// Package server is the HTTP trigger for sync runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"canvas-notion-sync/internal/logger"
)

const (
	readTimeout     = 15 * time.Second
	idleTimeout     = 60 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Config holds the trigger settings.
type Config struct {
	Addr   string
	Secret string
	// SyncTimeout bounds one triggered run. Zero means no limit.
	SyncTimeout time.Duration
	Debug       bool
	// Metrics, when set, is served at /metrics.
	Metrics http.Handler
}

// Server owns the gin engine and its http.Server.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logger.Logger
}

func New(cfg Config, runner Runner, log logger.Logger) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))

	h := &handlers{runner: runner, secret: cfg.Secret, timeout: cfg.SyncTimeout, log: log}
	router.GET("/", h.root)
	router.GET("/health", h.health)
	router.GET("/sync", h.sync)
	router.POST("/sync", h.sync)
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	return &Server{
		router: router,
		server: &http.Server{
			Addr:        cfg.Addr,
			Handler:     router,
			ReadTimeout: readTimeout,
			IdleTimeout: idleTimeout,
			// no WriteTimeout: /sync responds only after the run finishes
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}
