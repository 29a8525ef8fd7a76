package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/sketchrelay/server/internal/errors"
	"codeberg.org/sketchrelay/server/internal/logger"
	ws "codeberg.org/sketchrelay/server/internal/websocket"
)

// builds the upgrader used by the relay endpoint
func NewUpgrader(cfg UpgraderConfig) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.NewOriginChecker(cfg.Production, cfg.AllowedOrigins),
	}
}

// upgrades the request, registers the new session with the hub and starts
// its pumps. requests that are not websocket handshakes are rejected here and
// never reach the hub.
func WebSocketHandler(hub *ws.Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		remoteAddr := c.ClientIP()
		log := logger.FromContext(c.Request.Context())

		if !websocket.IsWebSocketUpgrade(c.Request) {
			log.Warn("rejected non-websocket request",
				"user_agent", c.Request.UserAgent(),
			)

			errors.BadRequest(c, "websocket upgrade required", nil)
			return
		}

		if !hub.Accepting() {
			errors.ServiceUnavailable(c, "server is shutting down")
			return
		}

		// upgrade HTTP connection to WebSocket; on failure the upgrader has
		// already written an error response
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("failed to upgrade connection", "error", err)

			return
		}

		client := ws.NewClient(ws.NewSessionID(), remoteAddr, conn, hub)

		if err := hub.Join(client); err != nil {
			log.Warn("failed to register session",
				"session_id", client.ID,
				"error", err,
			)

			closeMsg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server unavailable")
			conn.WriteMessage(websocket.CloseMessage, closeMsg) //nolint:errcheck,gosec // G104: best effort
			conn.Close()                                        //nolint:errcheck,gosec // G104: cleanup
			return
		}

		go client.WritePump()
		go client.ReadPump()

		log.Debug("websocket connection established", "session_id", client.ID)
	}
}
