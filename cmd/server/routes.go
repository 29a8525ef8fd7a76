package main

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/sketchrelay/server/api/rest/health"
	"codeberg.org/sketchrelay/server/api/websocket"
	"codeberg.org/sketchrelay/server/internal/config"
	"codeberg.org/sketchrelay/server/internal/errors"
	"codeberg.org/sketchrelay/server/internal/logger"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(RequestLoggerMiddleware())
	router.Use(gin.CustomRecovery(RecoveryHandler))
	router.Use(CORSMiddleware(server.config))

	router.NoRoute(func(c *gin.Context) {
		errors.NotFound(c, "")
	})

	v1 := router.Group("/api/v1")

	health.RegisterRoutes(router, v1, server.hub)

	upgrader := websocket.NewUpgrader(websocket.UpgraderConfig{
		Production:     server.config.IsProduction(),
		AllowedOrigins: server.config.AllowedOrigins,
	})
	websocket.RegisterRoutes(router, v1, server.hub, upgrader)

	if server.config.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(server.registry, promhttp.HandlerOpts{})))
	}
}

// allows browser clients to read the REST endpoints. production restricts
// origins to ALLOWED_ORIGINS; development allows all.
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowWebSockets:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if cfg.IsProduction() && len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}

// stores a logger carrying the request's method, path and client address in
// the request context
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logger.With(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"remote_addr", c.ClientIP(),
		)

		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))
		c.Next()
	}
}

// answers a recovered handler panic with a 500
func RecoveryHandler(c *gin.Context, recovered any) {
	errors.InternalError(c, "", fmt.Errorf("handler panic: %v", recovered))
	c.Abort()
}
