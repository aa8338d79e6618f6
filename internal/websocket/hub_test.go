package websocket

import (
	"path/filepath"
	"testing"
	"time"

	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/internal/pkg/logger"

	"github.com/google/uuid"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "hub_test.log"))
	hub := NewHub(nil, log)
	go hub.Run()
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID uuid.UUID, sendBuf int) *Client {
	t.Helper()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, sendBuf)}
	hub.register <- client
	// IsOnline alone is not enough: for a second device of the same user it
	// is already true before Run appends this client, so wait until the hub
	// actually holds it.
	waitFor(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		for _, c := range hub.clients[userID] {
			if c == client {
				return true
			}
		}
		return false
	}, "client never registered")
	return client
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestHubPresence(t *testing.T) {
	hub := newTestHub(t)

	alice := uuid.New()
	bob := uuid.New()

	if hub.IsOnline(alice) {
		t.Error("nobody connected yet, IsOnline should be false")
	}

	aliceClient := registerClient(t, hub, alice, 4)
	registerClient(t, hub, bob, 4)

	if !hub.IsOnline(alice) || !hub.IsOnline(bob) {
		t.Error("both users should be online after registering")
	}
	if got := len(hub.OnlineUsers()); got != 2 {
		t.Errorf("OnlineUsers = %d users, want 2", got)
	}

	hub.unregister <- aliceClient
	waitFor(t, func() bool { return !hub.IsOnline(alice) }, "alice never went offline")

	if !hub.IsOnline(bob) {
		t.Error("bob should still be online")
	}
	if got := len(hub.OnlineUsers()); got != 1 {
		t.Errorf("OnlineUsers = %d users, want 1", got)
	}
}

func TestSendDropsSlowClient(t *testing.T) {
	hub := newTestHub(t)

	userID := uuid.New()
	client := registerClient(t, hub, userID, 1)
	client.Send <- []byte("backlog") // fill the buffer

	hub.Send(userID, model.Notification{Title: "hello"})

	waitFor(t, func() bool { return !hub.IsOnline(userID) }, "slow client never dropped")

	// The hub owns the channel close; after the drop it must be closed
	// exactly once, with the backlog still readable.
	if _, ok := <-client.Send; !ok {
		t.Fatal("buffered message lost")
	}
	if _, ok := <-client.Send; ok {
		t.Error("Send channel should be closed after the drop")
	}
}

func TestSendDeliversToEveryDevice(t *testing.T) {
	hub := newTestHub(t)

	userID := uuid.New()
	phone := registerClient(t, hub, userID, 4)
	laptop := registerClient(t, hub, userID, 4)

	hub.Send(userID, model.Notification{Title: "order shipped"})

	for _, client := range []*Client{phone, laptop} {
		select {
		case <-client.Send:
		case <-time.After(time.Second):
			t.Fatal("device did not receive the notification")
		}
	}
}

func TestBroadcastSurvivesSlowClients(t *testing.T) {
	hub := newTestHub(t)

	slowA := registerClient(t, hub, uuid.New(), 1)
	slowB := registerClient(t, hub, uuid.New(), 1)
	healthy := registerClient(t, hub, uuid.New(), 4)
	slowA.Send <- []byte("backlog")
	slowB.Send <- []byte("backlog")

	hub.Broadcast(model.Notification{Title: "maintenance window"})

	select {
	case <-healthy.Send:
	case <-time.After(time.Second):
		t.Fatal("healthy client did not receive the broadcast")
	}

	waitFor(t, func() bool { return !hub.IsOnline(slowA.UserID) }, "first slow client never dropped")
	waitFor(t, func() bool { return !hub.IsOnline(slowB.UserID) }, "second slow client never dropped")
	if !hub.IsOnline(healthy.UserID) {
		t.Error("healthy client should survive the broadcast")
	}
}
