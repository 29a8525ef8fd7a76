package websocket

import (
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	apperrors "codeberg.org/sketchrelay/server/internal/errors"
	"codeberg.org/sketchrelay/server/internal/logger"
)

// creates a hub. zero option fields fall back to defaults; a nil metrics
// value registers collectors on a private registry.
func NewHub(opts Options, metrics *Metrics) *Hub {
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaultMaxMessageSize
	}

	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = defaultSendQueueSize
	}

	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	if metrics == nil {
		metrics = MustNewMetrics(nil)
	}

	return &Hub{
		registry: NewRegistry(),
		history:  NewHistory(opts.HistoryLimit),
		metrics:  metrics,
		opts:     opts,
	}
}

// registers the client and queues the history replay for it. the replay is
// queued under the relay lock, so the client sees every event exactly once:
// either inside the replay or as a live message after it.
func (h *Hub) Join(client *Client) error {
	h.mu.Lock()

	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}

	if err := h.registry.Register(client); err != nil {
		h.mu.Unlock()
		return err
	}

	client.setState(StateActive)

	events := h.history.Snapshot()

	var replayErr error
	if len(events) > 0 {
		replayErr = h.queueReplay(client, events)
	}

	total := h.registry.Count()
	h.mu.Unlock()

	h.metrics.connections.Inc()
	h.metrics.sessionsActive.Set(float64(total))

	log := sessionLogger(client)
	log.Info("client connected", "history_len", len(events))
	logger.Info("total clients", "sessions", total)

	if replayErr != nil {
		log.Error("failed to send history", "error", replayErr)

		h.Leave(client, ErrDeliveryFailed)
		return replayErr
	}

	return nil
}

// must be called with h.mu held
func (h *Hub) queueReplay(client *Client, events [][]byte) error {
	payload, err := EncodeHistory(events)
	if err != nil {
		return err
	}

	if err := client.Send(Frame{Kind: websocket.TextMessage, Data: payload}); err != nil {
		return err
	}

	h.metrics.replaysSent.Inc()

	return nil
}

// appends one inbound frame to history and fans it out to every other
// client. peers whose send fails are removed after the batch. returns
// ErrMalformedPayload without side effects when the frame is not a
// well-formed message.
func (h *Hub) Relay(sender *Client, frame Frame) error {
	if err := ValidatePayload(frame.Data); err != nil {
		h.metrics.messagesRejected.WithLabelValues("malformed").Inc()
		return err
	}

	h.mu.Lock()

	historyLen := h.history.Append(frame.Data)
	targets := h.registry.SnapshotExcluding(sender)

	var failed []failedSend
	delivered := 0

	for _, target := range targets {
		if err := target.Send(frame); err != nil {
			failed = append(failed, failedSend{client: target, err: err})
			continue
		}

		delivered++
	}

	h.mu.Unlock()

	h.metrics.messagesReceived.Inc()
	h.metrics.historyEvents.Set(float64(historyLen))
	h.metrics.deliveries.Add(float64(delivered))
	h.metrics.deliveryFailures.Add(float64(len(failed)))

	for _, f := range failed {
		logger.Warn("failed to send to client",
			"session_id", f.client.ID,
			"from_session_id", sender.ID,
			"error", f.err,
		)

		h.Leave(f.client, ErrDeliveryFailed)
	}

	return nil
}

// deregisters the client and closes its outbound queue. safe to call more
// than once and from any goroutine; only the first call logs. cause is the
// error that ended the session, or nil for a server-initiated close.
func (h *Hub) Leave(client *Client, cause error) {
	removed := h.registry.Deregister(client)
	client.Close()

	if !removed {
		return
	}

	remaining := h.registry.Count()
	kind := closeKind(cause)

	h.metrics.sessionsActive.Set(float64(remaining))
	h.metrics.disconnects.WithLabelValues(string(kind)).Inc()

	log := sessionLogger(client)

	switch {
	case kind.IsGraceful():
		log.Info("client disconnected", "close_kind", kind)
	default:
		log.Warn("connection lost", "close_kind", kind, "error", cause)
	}

	logger.Info("clients remaining", "sessions", remaining)
}

func sessionLogger(client *Client) *slog.Logger {
	return logger.With("session_id", client.ID, "remote_addr", client.RemoteAddr)
}

// maps the cause of a disconnect to a close kind for diagnostics
func closeKind(cause error) apperrors.CloseKind {
	switch {
	case cause == nil:
		return apperrors.CloseClean
	case errors.Is(cause, ErrMalformedPayload):
		return apperrors.CloseAbrupt
	case errors.Is(cause, ErrDeliveryFailed):
		return apperrors.CloseAbrupt
	default:
		return apperrors.ClassifyClose(cause)
	}
}

// stops accepting clients and closes every live session with a going-away
// status. returns the number of sessions closed.
func (h *Hub) Shutdown() int {
	h.mu.Lock()
	h.closed = true
	clients := h.registry.Snapshot()
	h.mu.Unlock()

	logger.Info("closing all websocket connections", "sessions", len(clients))

	for _, client := range clients {
		client.CloseWithCode(websocket.CloseGoingAway, "server shutting down")
		h.Leave(client, nil)
	}

	return len(clients)
}

// reports whether the hub still accepts new clients
func (h *Hub) Accepting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return !h.closed
}

// returns the number of registered clients
func (h *Hub) ClientCount() int {
	return h.registry.Count()
}

// returns the number of events in the history log
func (h *Hub) HistoryLen() int {
	return h.history.Len()
}

// reports whether a client with this ID is registered
func (h *Hub) IsRegistered(id string) bool {
	return h.registry.Has(id)
}

// returns the hub's options with defaults applied
func (h *Hub) Options() Options {
	return h.opts
}
