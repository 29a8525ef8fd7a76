package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/sketchrelay/server/internal/config"
	"codeberg.org/sketchrelay/server/internal/errors"
	"codeberg.org/sketchrelay/server/internal/logger"
)

func startServer(t *testing.T, cfg *config.Config) (string, *Server, context.CancelFunc, <-chan error) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	srv, err := NewServer(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(cancel)

	return ln.Addr().String(), srv, cancel, done
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(nil)
	require.Error(t, err)
}

func TestServerServesRelayHealthAndMetrics(t *testing.T) {
	addr, srv, cancel, done := startServer(t, config.Default())

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	resp.Body.Close() //nolint:errcheck,gosec // test cleanup
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/", nil)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck,gosec // test cleanup

	require.Eventually(t, func() bool { return srv.hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck,gosec // test cleanup
	require.NoError(t, err)
	assert.Contains(t, string(body), "sketchrelay_relay_sessions_active 1")

	cancel()

	// the live session is told the server is going away
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerWithoutMetrics(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsEnabled = false

	addr, _, _, _ := startServer(t, cfg)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck,gosec // test cleanup

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errors.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, errors.CodeNotFound, body.Error)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	srv, err := NewServer(config.Default())
	require.NoError(t, err)

	return srv.router
}

func TestRecoveredPanicReturnsServerError(t *testing.T) {
	router := newTestRouter(t)
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeServerError, body.Error)
}

func TestRequestLoggerMiddlewareScopesLogger(t *testing.T) {
	var logs bytes.Buffer

	prev := logger.Default()
	logger.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { logger.SetDefault(prev) })

	router := newTestRouter(t)
	router.GET("/scoped", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("handled")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scoped", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, logs.String(), "msg=handled method=GET path=/scoped")
}
