package errors

// represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`             // error code (e.g., "bad_request", "too_many_requests")
	Message string `json:"message"`           // user-friendly message
	Details string `json:"details,omitempty"` // optional details (sanitized in production)
}

// describes how a websocket connection ended. only used for diagnostics:
// every kind leads to the same cleanup.
type CloseKind string

const (
	// peer sent a normal close frame
	CloseClean CloseKind = "clean"

	// peer went away (tab closed, server shutting down)
	CloseGoingAway CloseKind = "going_away"

	// connection dropped without a close frame, or with an error status
	CloseAbrupt CloseKind = "abrupt"

	// read or write deadline expired
	CloseTimeout CloseKind = "timeout"

	// anything we could not classify
	CloseUnknown CloseKind = "unknown"
)
