package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"codeberg.org/sketchrelay/server/internal/logger"
)

// returns an origin check for the websocket upgrader. outside production every
// origin is accepted; in production the Origin header must be listed.
func NewOriginChecker(production bool, allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if !production {
			return true
		}

		origin := r.Header.Get("Origin")

		if origin == "" {
			logger.Warn("websocket connection with no origin header",
				"remote_addr", r.RemoteAddr,
			)
			return false
		}

		if len(allowedOrigins) == 0 {
			logger.Warn("websocket origin rejected - ALLOWED_ORIGINS not configured",
				"origin", origin,
			)
			return false
		}

		if slices.Contains(allowedOrigins, origin) {
			return true
		}

		logger.Warn("websocket origin rejected - not in allowed origins",
			"origin", origin,
			"allowed_origins", allowedOrigins,
		)

		return false
	}
}

// generates a fresh session identity
func NewSessionID() string {
	return uuid.NewString()
}

// checks that payload is a single well-formed JSON value. the content is not
// interpreted. the payload must also pass encoding/json, which bounds nesting
// depth, so every stored event can be re-encoded in a history replay.
func ValidatePayload(payload []byte) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: empty frame", ErrMalformedPayload)
	}

	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("%w: invalid json", ErrMalformedPayload)
	}

	if !json.Valid(payload) {
		return fmt.Errorf("%w: nesting too deep", ErrMalformedPayload)
	}

	return nil
}
