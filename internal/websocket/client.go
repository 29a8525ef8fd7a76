package websocket

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/sketchrelay/server/internal/logger"
)

// creates a new websocket client connection bound to hub
func NewClient(id, remoteAddr string, conn *websocket.Conn, hub *Hub) *Client {
	opts := hub.Options()

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))
	}

	return &Client{
		ID:          id,
		RemoteAddr:  remoteAddr,
		conn:        conn,
		hub:         hub,
		send:        make(chan Frame, opts.SendQueueSize),
		limiter:     limiter,
		state:       StateConnecting,
		closeCode:   websocket.CloseNormalClosure,
		closeReason: "",
	}
}

// reads frames from the websocket connection and relays them through the hub.
// returns when the peer closes, the connection fails, or a frame is malformed;
// in every case the client is deregistered.
func (c *Client) ReadPump() {
	var cause error

	defer func() {
		if r := recover(); r != nil {
			cause = fmt.Errorf("read pump panic: %v", r)
			logger.Error("recovered from panic in read pump",
				"session_id", c.ID,
				"panic", r,
			)
		}

		// the write pump sends the close frame and closes the connection
		c.hub.Leave(c, cause)
	}()

	c.conn.SetReadLimit(c.hub.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			cause = err
			return
		}

		// any inbound traffic proves the peer is alive
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket timing

		if c.limiter != nil && !c.limiter.Allow() {
			c.hub.metrics.messagesRejected.WithLabelValues("rate_limited").Inc()
			logger.Warn("dropping message over rate limit",
				"session_id", c.ID,
			)

			continue
		}

		if err := c.hub.Relay(c, Frame{Kind: kind, Data: data}); err != nil {
			cause = err

			if errors.Is(err, ErrMalformedPayload) {
				logger.Warn("closing connection after malformed payload",
					"session_id", c.ID,
					"remote_addr", c.RemoteAddr,
					"size", len(data),
				)

				c.CloseWithCode(websocket.CloseInvalidFramePayloadData, "malformed payload")
			}

			return
		}
	}
}

// writes queued frames to the websocket connection and keeps it alive with
// pings. exits when the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	writeTimeout := c.hub.opts.WriteTimeout

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
		c.setState(StateClosed)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the queue
				code, reason := c.closeStatus()
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason)) //nolint:errcheck,gosec // G104: close message
				return
			}

			if err := c.conn.WriteMessage(frame.Kind, frame.Data); err != nil {
				logger.Debug("websocket write failed",
					"session_id", c.ID,
					"error", err,
				)

				c.hub.Leave(c, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Leave(c, err)
				return
			}
		}
	}
}

// queues a frame for the client without blocking. fails when the client is
// not active or its queue is full.
func (c *Client) Send(frame Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// the queue is only closed under the write lock, so holding the read lock
	// keeps the channel open for the select below
	if c.state != StateActive {
		return ErrConnectionClosed
	}

	select {
	case c.send <- frame:
		return nil
	default:
		return ErrQueueFull
	}
}

// closes the client's outbound queue with a normal closure status
func (c *Client) Close() {
	c.CloseWithCode(websocket.CloseNormalClosure, "")
}

// closes the outbound queue; the write pump then sends a close frame with
// the given status. only the first call has an effect.
func (c *Client) CloseWithCode(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosing || c.state == StateClosed {
		return
	}

	c.state = StateClosing
	c.closeCode = code
	c.closeReason = reason
	close(c.send)
}

// returns the client's liveness state
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

// checks if the client is closing or closed
func (c *Client) IsClosed() bool {
	s := c.State()
	return s == StateClosing || s == StateClosed
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// closing only moves forward
	if c.state == StateClosed || (c.state == StateClosing && s != StateClosed) {
		return
	}

	c.state = s
}

func (c *Client) closeStatus() (int, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closeCode, c.closeReason
}
