package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/interlinker/internal/config"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
)

// Server is the HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	log    logger.Logger
	cfg    config.ServerConfig
}

// NewRouter builds the gin engine with the standard middleware chain and
// h's routes.
func NewRouter(cfg config.ServerConfig, log logger.Logger, h *Handler) *gin.Engine {
	router := gin.New()

	// Recovery first, then request ID so the request logger sees it.
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(BodyLimitMiddleware(cfg.MaxBodyBytes))

	h.RegisterRoutes(router)
	return router
}

// NewServer creates a Server from the loaded configuration.
func NewServer(cfg *config.Config, log logger.Logger, h *Handler) *Server {
	if cfg.Service.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := NewRouter(cfg.Server, log, h)
	return &Server{
		router: router,
		server: &http.Server{
			Addr:         cfg.Server.Address(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		log: log,
		cfg: cfg.Server,
	}
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the server is shut down.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		logger.String("address", s.server.Addr),
		logger.Duration("read_timeout", s.server.ReadTimeout),
		logger.Duration("write_timeout", s.server.WriteTimeout),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains connections within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// Run serves until SIGINT, SIGTERM or ctx cancellation, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.log.Info("Shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		s.log.Info("Context cancelled, shutting down")
	}

	//nolint:contextcheck // ctx may already be cancelled
	return s.Shutdown(context.Background())
}
