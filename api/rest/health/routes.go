package health

import "github.com/gin-gonic/gin"

func RegisterRoutes(root gin.IRoutes, v1 gin.IRoutes, relay RelayStats) {
	root.GET("/health", Handler)
	v1.GET("/ping", PingHandler)
	v1.GET("/stats", StatsHandler(relay))
}
