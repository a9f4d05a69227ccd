// Package api exposes the alert engine over HTTP and WebSocket.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"market-alerts/internal/coach"
	"market-alerts/internal/feed"
	"market-alerts/internal/logging"
	"market-alerts/internal/models"
	"market-alerts/internal/monitor"
	"market-alerts/internal/notify"
	"market-alerts/internal/resilience"
	"market-alerts/internal/store"
	"market-alerts/internal/stream"
)

// FeedReader is the feed surface used by the API.
type FeedReader interface {
	Snapshot(ctx context.Context) models.PriceSnapshot
	Status() feed.Status
}

// Deps are the engine components served by the API.
type Deps struct {
	Store      store.AlertStore
	Sink       *notify.Sink
	Controller *monitor.Controller
	Feed       FeedReader
	Hub        *stream.Hub
	Coach      *coach.Coach
}

// Server is the HTTP front end of the engine.
type Server struct {
	deps   Deps
	engine *gin.Engine
	health *resilience.HealthChecker
	logger zerolog.Logger
}

// NewServer builds the router.
func NewServer(deps Deps, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		deps:   deps,
		engine: gin.New(),
		health: newHealthChecker(deps),
		logger: logging.WithComponent(logger, "api"),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s
}

type pinger interface {
	Ping(ctx context.Context) error
}

func newHealthChecker(deps Deps) *resilience.HealthChecker {
	h := resilience.NewHealthChecker(2 * time.Second)
	if p, ok := deps.Store.(pinger); ok {
		h.Register("store", resilience.DatabaseHealthCheck(p.Ping))
	}
	if deps.Feed != nil {
		h.Register("price_feed", resilience.BreakerHealthCheck(func() *resilience.CircuitBreakerStats {
			return deps.Feed.Status().Breaker
		}, "serving synthetic prices"))
	}
	if deps.Controller != nil {
		h.Register("monitoring", resilience.LoopHealthCheck(deps.Controller.Running, deps.Controller.Paused))
	}
	return h
}

func (s *Server) routes() {
	r := s.engine.Group("/api")

	r.GET("/alerts", s.listAlerts)
	r.POST("/alerts", s.createAlert)
	r.DELETE("/alerts/:id", s.removeAlert)
	r.POST("/alerts/:id/toggle", s.toggleAlert)

	r.GET("/notifications", s.listNotifications)
	r.DELETE("/notifications", s.clearNotifications)
	r.DELETE("/notifications/:id", s.dismissNotification)
	r.POST("/notifications/:id/coach", s.coachNotification)

	r.GET("/monitoring", s.getMonitoring)
	r.PUT("/monitoring", s.setMonitoring)

	r.GET("/feed", s.getFeed)
	r.GET("/ws", s.serveWS)

	s.engine.GET("/healthz", s.getHealth)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := s.logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.logger.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
