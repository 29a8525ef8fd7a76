package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHost           = "localhost"
	defaultPort           = "8765"
	defaultEnvironment    = "development"
	defaultMaxMessageSize = 512 * 1024
	defaultSendQueueSize  = 256
	defaultWriteTimeout   = 10 * time.Second
)

// returns the configuration used when no environment variables are set
func Default() *Config {
	return &Config{
		Host:           defaultHost,
		Port:           defaultPort,
		Environment:    defaultEnvironment,
		MaxMessageSize: defaultMaxMessageSize,
		SendQueueSize:  defaultSendQueueSize,
		WriteTimeout:   defaultWriteTimeout,
		MetricsEnabled: true,
	}
}

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromLookup(os.LookupEnv)
}

// builds a Config from a lookup function (os.LookupEnv in production, a map in tests)
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	get := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}

		return strings.TrimSpace(v)
	}

	if v := get("HOST"); v != "" {
		cfg.Host = v
	}

	if v := get("PORT"); v != "" {
		if err := validatePort(v); err != nil {
			return nil, err
		}

		cfg.Port = v
	}

	if v := get("ENVIRONMENT"); v != "" {
		cfg.Environment = v
	}

	if v := get("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitOrigins(v)
	}

	if v := get("HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("HISTORY_LIMIT must be a non-negative integer, got %q", v)
		}

		cfg.HistoryLimit = n
	}

	if v := get("MAX_MESSAGE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_MESSAGE_SIZE must be a positive integer, got %q", v)
		}

		cfg.MaxMessageSize = n
	}

	if v := get("SEND_QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SEND_QUEUE_SIZE must be a positive integer, got %q", v)
		}

		cfg.SendQueueSize = n
	}

	if v := get("WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("WRITE_TIMEOUT must be a positive duration, got %q", v)
		}

		cfg.WriteTimeout = d
	}

	if v := get("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("RATE_LIMIT must be a non-negative number, got %q", v)
		}

		cfg.RateLimit = f
	}

	if v := get("RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("RATE_BURST must be a non-negative integer, got %q", v)
		}

		cfg.RateBurst = n
	}

	if v := get("METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("METRICS_ENABLED must be a boolean, got %q", v)
		}

		cfg.MetricsEnabled = b
	}

	// a limit without a burst would reject every message
	if cfg.RateLimit > 0 && cfg.RateBurst == 0 {
		cfg.RateBurst = max(1, int(cfg.RateLimit))
	}

	return cfg, nil
}

// returns host:port suitable for net.Listen
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("PORT must be a number between 0 and 65535, got %q", port)
	}

	return nil
}

func splitOrigins(v string) []string {
	parts := strings.Split(v, ",")
	origins := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}

	return origins
}
