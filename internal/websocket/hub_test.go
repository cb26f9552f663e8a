package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-ideation-be/internal/dto"
	"ai-ideation-be/internal/pkg/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewIsolatedLogger(t.TempDir()+"/hub.log"))
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, sessionId uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: hub, SessionID: sessionId, Send: make(chan []byte, buffer)}
	hub.register <- client
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[sessionId]) > 0
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestHubDeliversToSessionWatchers(t *testing.T) {
	hub := newTestHub(t)
	sessionId := uuid.New()
	watcher := registerClient(t, hub, sessionId, 4)
	other := registerClient(t, hub, uuid.New(), 4)

	hub.Publish(dto.ProgressUpdate{SessionId: sessionId, Status: "parsing", ProgressStep: 1})

	select {
	case msg := <-watcher.Send:
		assert.Contains(t, string(msg), `"type":"progress"`)
		assert.Contains(t, string(msg), `"parsing"`)
	case <-time.After(time.Second):
		t.Fatal("watcher never received the update")
	}

	select {
	case <-other.Send:
		t.Fatal("update leaked to a watcher of another session")
	default:
	}
}

// A watcher that stops draining its buffer is evicted exactly once; the
// buffered message still arrives and Send is closed by the hub.
func TestHubEvictsSlowConsumerWithoutPanic(t *testing.T) {
	hub := newTestHub(t)
	sessionId := uuid.New()
	client := registerClient(t, hub, sessionId, 1)

	update := dto.ProgressUpdate{SessionId: sessionId, Status: "generating", ProgressStep: 2}
	hub.Publish(update) // fills the buffer
	hub.Publish(update) // overflow: client is evicted

	msg, ok := <-client.Send
	require.True(t, ok)
	assert.Contains(t, string(msg), `"generating"`)

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok, "Send must be closed after eviction")
	case <-time.After(time.Second):
		t.Fatal("Send was never closed")
	}

	// a duplicate unregister (e.g. the read pump exiting) is a no-op
	hub.unregister <- client

	// and later publishes for the session are safe with no watchers left
	hub.Publish(update)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	assert.Empty(t, hub.clients[sessionId])
}

func TestHubKeepsRemainingWatchersAfterOneDisconnects(t *testing.T) {
	hub := newTestHub(t)
	sessionId := uuid.New()
	leaving := registerClient(t, hub, sessionId, 4)
	staying := registerClient(t, hub, sessionId, 4)

	hub.unregister <- leaving
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.clients[sessionId]) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Publish(dto.ProgressUpdate{SessionId: sessionId, Status: "scoring", ProgressStep: 5})

	select {
	case msg := <-staying.Send:
		assert.Contains(t, string(msg), `"scoring"`)
	case <-time.After(time.Second):
		t.Fatal("remaining watcher never received the update")
	}
}
