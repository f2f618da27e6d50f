package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/history"
)

func seededStore(t *testing.T) history.Store {
	t.Helper()

	store := history.NewMemoryStore(10)
	for i, id := range []string{"first", "second"} {
		require.NoError(t, store.Save(context.Background(), history.Record{
			ID:        id,
			FinalRisk: float64(10 * (i + 1)),
			Verdict:   "Low Risk",
			Timestamp: frozen.Add(time.Duration(i) * time.Minute),
		}))
	}

	return store
}

func TestHistoryRoutes(t *testing.T) {
	router := NewRouter(RouterConfig{History: seededStore(t)})

	w := do(t, router, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[HistoryList](t, w)
	require.Equal(t, 2, list.Data.Count)
	assert.Equal(t, "second", list.Data.Records[0].ID)

	w = do(t, router, http.MethodGet, "/api/history/first", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 10, decode[history.Record](t, w).Data.FinalRisk, 0.001)

	w = do(t, router, http.MethodGet, "/api/history/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errCodeNotFound, decode[history.Record](t, w).Error.Code)

	w = do(t, router, http.MethodDelete, "/api/history/first", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, HistoryDeleted{Deleted: true, ID: "first"}, *decode[HistoryDeleted](t, w).Data)

	w = do(t, router, http.MethodDelete, "/api/history/first", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodDelete, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/api/history", "")
	list = decode[HistoryList](t, w)
	assert.Equal(t, 0, list.Data.Count)
	assert.NotNil(t, list.Data.Records)
}

func TestHistoryUnconfigured(t *testing.T) {
	router := NewRouter(RouterConfig{})

	w := do(t, router, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, errCodeUnavailable, decode[HistoryList](t, w).Error.Code)
}
