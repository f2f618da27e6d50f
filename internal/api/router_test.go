package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingEndpoint(t *testing.T) {
	w := do(t, NewRouter(RouterConfig{}), http.MethodGet, "/ping", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ".", w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(t, NewRouter(RouterConfig{}), http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, NewRouter(RouterConfig{}), http.MethodOptions, "/api/scan", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRequestIDHeaderIsAllowed(t *testing.T) {
	w := do(t, NewRouter(RouterConfig{}), http.MethodGet, "/api/health", "")

	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
}
