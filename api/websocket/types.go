package websocket

// upgrader settings derived from config
type UpgraderConfig struct {
	Production     bool
	AllowedOrigins []string
}
