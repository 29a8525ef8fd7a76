package errors

import (
	"errors"
	"io"
	"net"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

// labels the error returned by a websocket read or write
func ClassifyClose(err error) CloseKind {
	if err == nil {
		return CloseClean
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseNoStatusReceived:
			return CloseClean
		case websocket.CloseGoingAway:
			return CloseGoingAway
		default:
			return CloseAbrupt
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CloseTimeout
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return CloseAbrupt
	}

	return CloseUnknown
}

// reports whether the close kind is one a well-behaved client produces
func (k CloseKind) IsGraceful() bool {
	return k == CloseClean || k == CloseGoingAway
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}

	errMsg := err.Error()

	if os.Getenv("ENVIRONMENT") != "production" {
		return errMsg
	}

	lower := strings.ToLower(errMsg)

	if strings.Contains(lower, "websocket") || strings.Contains(lower, "upgrade") {
		return "websocket handshake failed"
	}

	if strings.Contains(lower, "connection") || strings.Contains(lower, "network") {
		return "connection error occurred"
	}

	if strings.Contains(lower, "timeout") {
		return "request timed out"
	}

	return "an error occurred"
}
