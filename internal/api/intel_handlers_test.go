package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/intel"
)

func TestIntelRoutes(t *testing.T) {
	listed := "http://bad.example/login"
	fake := &fakeIntel{
		summary: intel.HydrationSummary{TotalFeeds: 1, SuccessfulFeeds: 1, TotalEntries: 1},
		entries: map[string]intel.ThreatFeedEntry{
			listed: {URL: listed, Source: "openphish", FirstSeen: frozen, LastSeen: frozen},
		},
	}
	router := NewRouter(RouterConfig{Intel: fake})

	w := do(t, router, http.MethodPost, "/api/intel/lookup", `{"url":"http://bad.example/login"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errCodeConflict, decode[IntelLookupResult](t, w).Error.Code)

	w = do(t, router, http.MethodPost, "/api/intel/hydrate", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[intel.HydrationSummary](t, w).Data.TotalEntries)

	w = do(t, router, http.MethodPost, "/api/intel/lookup", `{"url":"http://bad.example/login"}`)
	require.Equal(t, http.StatusOK, w.Code)

	hit := decode[IntelLookupResult](t, w)
	assert.True(t, hit.Data.Listed)
	require.NotNil(t, hit.Data.Entry)
	assert.Equal(t, "openphish", hit.Data.Entry.Source)

	w = do(t, router, http.MethodPost, "/api/intel/lookup", `{"url":"http://good.example"}`)
	require.Equal(t, http.StatusOK, w.Code)

	miss := decode[IntelLookupResult](t, w)
	assert.False(t, miss.Data.Listed)
	assert.Nil(t, miss.Data.Entry)

	w = do(t, router, http.MethodPost, "/api/intel/lookup", `{"url":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntelHydrateTimeout(t *testing.T) {
	router := NewRouter(RouterConfig{Intel: &fakeIntel{err: context.DeadlineExceeded}})

	w := do(t, router, http.MethodPost, "/api/intel/hydrate", "")
	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, errCodeTimeout, decode[intel.HydrationSummary](t, w).Error.Code)
}

func TestIntelUnconfigured(t *testing.T) {
	router := NewRouter(RouterConfig{})

	w := do(t, router, http.MethodPost, "/api/intel/hydrate", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestIntelLookupWithManager(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("http://phish.example/verify\n"))
	}))
	t.Cleanup(server.Close)

	client := server.Client()
	client.Timeout = 5 * time.Second

	manager, err := intel.NewManager(
		intel.FeedConfig{Feeds: []intel.Feed{{Name: "test_feed", URL: server.URL}}},
		intel.WithStorageDir(t.TempDir()),
		intel.WithHTTPClient(client),
	)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{Intel: manager})

	w := do(t, router, http.MethodPost, "/api/intel/hydrate", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodPost, "/api/intel/lookup", `{"url":"http://phish.example/verify"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[IntelLookupResult](t, w).Data.Listed)
}
