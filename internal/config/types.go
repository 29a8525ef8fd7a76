package config

import "time"

// runtime settings for the relay server
type Config struct {
	Host        string
	Port        string
	Environment string

	// origins accepted for websocket upgrades and CORS in production
	AllowedOrigins []string

	// max events retained for replay, 0 keeps everything
	HistoryLimit int

	// inbound frame read limit in bytes
	MaxMessageSize int64

	// per-session outbound queue capacity
	SendQueueSize int

	WriteTimeout time.Duration

	// inbound messages per second per session, 0 disables throttling
	RateLimit float64
	RateBurst int

	MetricsEnabled bool
}

type Flags struct {
	Host string
	Port string
}
