package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// message type constants for websocket communication
const (
	// is sent once to a joining client when the history log is non-empty
	TypeHistory = "history"
)

// client connection constants
const (
	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// defaults used when Options leaves a field zero
	defaultMaxMessageSize = 512 * 1024
	defaultSendQueueSize  = 256
	defaultWriteTimeout   = 10 * time.Second
)

// errors
var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrQueueFull        = errors.New("outbound queue full")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrDeliveryFailed   = errors.New("delivery failed")
	ErrHubClosed        = errors.New("hub is shutting down")
	ErrDuplicateSession = errors.New("session already registered")
)

// the replay sent to a joining client
type HistoryMessage struct {
	Type string            `json:"type"`
	Data []json.RawMessage `json:"data"`
}

// one websocket frame queued for a client. Kind is websocket.TextMessage or
// websocket.BinaryMessage and is preserved from the sender.
type Frame struct {
	Kind int
	Data []byte
}

// liveness of a client connection
type State int32

const (
	StateConnecting State = iota
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// tunables for a Hub and the clients it serves
type Options struct {
	// max events retained for replay, 0 keeps everything
	HistoryLimit int

	// inbound frame read limit in bytes
	MaxMessageSize int64

	// per-client outbound queue capacity; a full queue fails the send
	SendQueueSize int

	// deadline for each socket write
	WriteTimeout time.Duration

	// inbound messages per second per client, 0 disables throttling
	RateLimit float64
	RateBurst int
}

// represents a websocket client connection
type Client struct {
	// unique identifier for this client
	ID string

	// remote address, for logs only
	RemoteAddr string

	// websocket connection
	conn *websocket.Conn

	// hub reference for relaying messages
	hub *Hub

	// buffered channel of outbound frames
	send chan Frame

	// inbound throttle, nil when disabled
	limiter *rate.Limiter

	// guards state, closeCode and closeReason
	mu sync.RWMutex

	state       State
	closeCode   int
	closeReason string
}

// owns the session registry and history log and relays messages between clients
type Hub struct {
	registry *Registry
	history  *History
	metrics  *Metrics
	opts     Options

	// serializes history append, registry snapshot and enqueue so every
	// client observes the same global order
	mu sync.Mutex

	// set by Shutdown; no new clients are accepted afterwards
	closed bool
}

// a peer whose enqueue failed during fan-out; logged and removed once the
// relay lock is released
type failedSend struct {
	client *Client
	err    error
}
