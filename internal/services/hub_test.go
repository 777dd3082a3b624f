package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialHubConn upgrades a real websocket connection, registers its
// server side in the hub under userID, and returns a channel carrying
// every event the client side receives.
func dialHubConn(t *testing.T, hub *Hub, userID string) <-chan Event {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(userID, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	<-registered

	events := make(chan Event, 4096)
	go func() {
		defer close(events)
		for {
			var event Event
			if err := client.ReadJSON(&event); err != nil {
				return
			}
			events <- event
		}
	}()
	return events
}

func TestSendToUserSerializesConcurrentWrites(t *testing.T) {
	hub := NewHub()
	events := dialHubConn(t, hub, "alice")

	const senders = 16
	const perSender = 50

	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perSender; j++ {
				event := Event{
					Type: EventMomentCreated,
					Data: map[string]interface{}{"moment_id": "m1"},
				}
				if err := hub.SendToUser("alice", event); err != nil {
					t.Errorf("SendToUser: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	// Every frame must arrive intact; a torn or interleaved write
	// would error the read loop and close the channel early.
	deadline := time.After(5 * time.Second)
	for n := 0; n < senders*perSender; n++ {
		select {
		case event, ok := <-events:
			if !ok {
				t.Fatalf("connection broke after %d of %d events", n, senders*perSender)
			}
			if event.Type != EventMomentCreated {
				t.Fatalf("event %d has type %q, want %q", n, event.Type, EventMomentCreated)
			}
		case <-deadline:
			t.Fatalf("received %d of %d events", n, senders*perSender)
		}
	}
}

func TestBroadcastReachesEveryConnectedUser(t *testing.T) {
	hub := NewHub()
	alice := dialHubConn(t, hub, "alice")
	bob := dialHubConn(t, hub, "bob")

	hub.Broadcast(Event{Type: EventWindowOpen})

	for name, events := range map[string]<-chan Event{"alice": alice, "bob": bob} {
		select {
		case event := <-events:
			if event.Type != EventWindowOpen {
				t.Errorf("%s received %q, want %q", name, event.Type, EventWindowOpen)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("%s never received the broadcast", name)
		}
	}
}
