package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	ws "codeberg.org/sketchrelay/server/internal/websocket"
)

// mounts the relay endpoint at the root (what drawing clients dial) and under
// the versioned API group
func RegisterRoutes(root gin.IRoutes, v1 gin.IRoutes, hub *ws.Hub, upgrader *websocket.Upgrader) {
	handler := WebSocketHandler(hub, upgrader)

	root.GET("/", handler)
	v1.GET("/ws", handler)
}
