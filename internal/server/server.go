// Package server wraps the echo instance with middleware, health endpoints
// and graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mpavlovic/news-digest/internal/apperr"
	mw "github.com/mpavlovic/news-digest/pkg/middleware"
)

const GracefulShutdownTimeout = 10 * time.Second

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct{}

func (OkHealthChecker) Healthy(context.Context) bool { return true }

type Server struct {
	Echo *echo.Echo

	cfg    *Config
	health HealthChecker
}

func NewServer(e *echo.Echo, cfg *Config, health HealthChecker) *Server {
	if health == nil {
		health = OkHealthChecker{}
	}

	s := &Server{
		Echo:   e,
		cfg:    cfg,
		health: health,
	}

	s.Echo.HTTPErrorHandler = apperr.GlobalErrorHandler()
	s.setupMiddlewares()
	s.bindHealth()

	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
}

func (s *Server) bindHealth() {
	// The misspelled alias is part of the published contract, old clients
	// still probe it.
	s.Echo.GET("/healthcheck", s.healthHandler)
	s.Echo.GET("/heathcheck", s.healthHandler)
}

func (s *Server) healthHandler(c echo.Context) error {
	if !s.health.Healthy(c.Request().Context()) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Echo.Logger.Fatal("shutting down the server")
		}
	}()

	<-ctx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.Echo.Logger.Fatal(err)
		return err
	}
	return nil
}
