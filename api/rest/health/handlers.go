package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "sketchrelay"
	serviceVersion = "1.0.0"
)

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{
		Message: "pong",
	})
}

// reports registry size and history length
func StatsHandler(relay RelayStats) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, StatsResponse{
			Sessions:   relay.ClientCount(),
			HistoryLen: relay.HistoryLen(),
			Accepting:  relay.Accepting(),
		})
	}
}
