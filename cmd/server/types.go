package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"codeberg.org/sketchrelay/server/internal/config"
	ws "codeberg.org/sketchrelay/server/internal/websocket"
)

// holds all dependencies and state for the relay server
type Server struct {
	config   *config.Config
	hub      *ws.Hub
	router   *gin.Engine
	registry *prometheus.Registry
}
