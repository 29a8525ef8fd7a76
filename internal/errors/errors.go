package errors

import (
	"net/http"

	"codeberg.org/sketchrelay/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP handlers (health, stats, the websocket upgrade endpoint):
//   - Use errors.BadRequest(), errors.InternalError(), etc. These write the
//     JSON response; InternalError also logs through the request logger.
//   - Unknown routes and recovered panics are answered by NotFound and
//     InternalError from the router setup.
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error.
//
// For websocket pumps and the relay:
//   - Log with logger.Warn()/logger.ErrorErr() and tear down only the affected session.
//   - Use ClassifyClose() to label why a connection ended; never branch on it.
//
// For internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Let the caller decide how to log and respond

// standard error codes
const (
	CodeNotFound           = "not_found"
	CodeServerError        = "server_error"
	CodeBadRequest         = "bad_request"
	CodeServiceUnavailable = "service_unavailable"
)

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with the request's logger
	logger.FromContext(c.Request.Context()).Error(message,
		"status", http.StatusInternalServerError,
		"error", err,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}

// returns a 503 while the server is draining connections
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "service unavailable"
	}

	c.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error:   CodeServiceUnavailable,
		Message: message,
	})
}
