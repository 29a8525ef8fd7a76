package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"codeberg.org/sketchrelay/server/internal/config"
	"codeberg.org/sketchrelay/server/internal/logger"
	ws "codeberg.org/sketchrelay/server/internal/websocket"
)

const (
	// how long shutdown waits for in-flight HTTP requests
	shutdownTimeout = 10 * time.Second
)

// creates and configures a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := ws.NewHub(ws.Options{
		HistoryLimit:   cfg.HistoryLimit,
		MaxMessageSize: cfg.MaxMessageSize,
		SendQueueSize:  cfg.SendQueueSize,
		WriteTimeout:   cfg.WriteTimeout,
		RateLimit:      cfg.RateLimit,
		RateBurst:      cfg.RateBurst,
	}, ws.MustNewMetrics(registry))

	logger.Info("relay hub initialized",
		"history_limit", cfg.HistoryLimit,
		"send_queue_size", cfg.SendQueueSize,
		"rate_limit", cfg.RateLimit,
	)

	router := gin.New()

	server := &Server{
		config:   cfg,
		hub:      hub,
		router:   router,
		registry: registry,
	}

	RegisterRoutes(router, server)

	return server, nil
}

// serves HTTP on ln until ctx is cancelled, then closes every session and
// drains the HTTP server
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", ln.Addr().String())

		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down server")

		// close websocket sessions first; hijacked connections are not
		// tracked by http.Server.Shutdown
		s.hub.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		return nil
	})

	return g.Wait()
}
