package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramNotify(t *testing.T) {
	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	tg := NewTelegram("test-token", WithBaseURL(server.URL))
	err := tg.Notify(context.Background(), "12345", "ingestion finished")
	require.NoError(t, err)

	assert.Equal(t, "12345", got.ChatID)
	assert.Equal(t, "ingestion finished", got.Text)
}

func TestTelegramNotifyAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer server.Close()

	tg := NewTelegram("test-token", WithBaseURL(server.URL))
	err := tg.Notify(context.Background(), "0", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestNoopNotify(t *testing.T) {
	assert.NoError(t, Noop{}.Notify(context.Background(), "anyone", "anything"))
}
