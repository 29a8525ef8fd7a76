package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRelay struct {
	clients   int
	history   int
	accepting bool
}

func (f fakeRelay) ClientCount() int { return f.clients }
func (f fakeRelay) HistoryLen() int  { return f.history }
func (f fakeRelay) Accepting() bool  { return f.accepting }

func newRouter(relay RelayStats) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router, router.Group("/api/v1"), relay)

	return router
}

func TestHealthHandler(t *testing.T) {
	router := newRouter(fakeRelay{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "sketchrelay", resp.Service)
}

func TestPingHandler(t *testing.T) {
	router := newRouter(fakeRelay{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestStatsHandler(t *testing.T) {
	router := newRouter(fakeRelay{clients: 3, history: 42, accepting: true})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"sessions":3,"history_len":42,"accepting":true}`, w.Body.String())
}
