package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theopenlane/spectra/internal/types"
)

// capture starts a webhook that records every posted message and answers with status
func capture(t *testing.T, status int) (*httptest.Server, *[]Message) {
	t.Helper()

	var got []Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/json"))

		var msg Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("failed to decode message: %v", err)
		}

		got = append(got, msg)

		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, &got
}

func TestSend(t *testing.T) {
	server, got := capture(t, http.StatusOK)

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	require.NoError(t, client.Send(context.Background(), Message{Text: "test message"}))
	require.Len(t, *got, 1)
	assert.Equal(t, "test message", (*got)[0].Text)
}

func TestSendServerError(t *testing.T) {
	server, _ := capture(t, http.StatusInternalServerError)

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	require.NoError(t, err)

	assert.ErrorIs(t, client.Send(context.Background(), Message{Text: "test"}), ErrUnexpectedStatus)
}

func TestSendRequestError(t *testing.T) {
	client, err := New("http://localhost:1/invalid", WithHTTPClient(&http.Client{}))
	require.NoError(t, err)

	assert.ErrorIs(t, client.Send(context.Background(), Message{Text: "test"}), ErrNotificationFailed)
}

func TestNotify(t *testing.T) {
	server, got := capture(t, http.StatusOK)

	client, err := New(server.URL, WithHTTPClient(server.Client()), WithThreshold(60))
	require.NoError(t, err)

	sent, err := client.Notify(context.Background(), &types.UnifiedScanResult{UnifiedScore: 59.99})
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = client.Notify(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, sent)

	sent, err = client.Notify(context.Background(), &types.UnifiedScanResult{UnifiedScore: 60, Verdict: types.RiskMedium})
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, *got, 1)
	assert.Equal(t, "Medium Risk: unified score 60.00", (*got)[0].Text)
}
