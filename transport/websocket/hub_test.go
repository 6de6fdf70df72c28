package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/mcp-training/wordsearch/game/engine"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub register/unregister channels are nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubPublishQueuesMessage(t *testing.T) {
	hub := NewHub()

	state := &engine.RoundState{RoundID: "r1", Phase: engine.PhaseActive, Score: 1, Total: 3}
	events := []engine.Event{
		{Type: engine.EventWordFound, Word: "GATO", Score: 1},
		{Type: engine.EventScoreChanged, Score: 1},
	}

	hub.Publish("abcd", events, state)

	select {
	case message := <-hub.broadcast:
		if message.SessionID != "abcd" {
			t.Errorf("Expected session abcd, got %s", message.SessionID)
		}
		if message.Event != string(engine.EventScoreChanged) {
			t.Errorf("Expected event to name the last event, got %s", message.Event)
		}
		if len(message.Events) != 2 || message.Events[0].Word != "GATO" {
			t.Errorf("Events not carried: %+v", message.Events)
		}
		if message.RoundState.Score != 1 {
			t.Errorf("Expected score 1, got %d", message.RoundState.Score)
		}
	default:
		t.Fatal("Publish did not queue a message")
	}
}

func TestHubPublishWithoutEventsIsStateUpdate(t *testing.T) {
	hub := NewHub()

	hub.BroadcastToSession("abcd", &engine.RoundState{RoundID: "r1"})

	message := <-hub.broadcast
	if message.Event != EventStateUpdate {
		t.Errorf("Expected %s, got %s", EventStateUpdate, message.Event)
	}
}

func TestHubPublishDoesNotBlockWhenFull(t *testing.T) {
	hub := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+10; i++ {
			hub.Publish("abcd", nil, &engine.RoundState{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected full queue of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubBroadcastOnlyToSession(t *testing.T) {
	hub := NewHub()

	watching := &Client{hub: hub, sessionID: "aaaa", send: make(chan []byte, 1)}
	other := &Client{hub: hub, sessionID: "bbbb", send: make(chan []byte, 1)}
	hub.registerClient(watching)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{SessionID: "aaaa", Event: EventStateUpdate})

	if len(watching.send) != 1 {
		t.Error("watching client did not receive the message")
	}
	if len(other.send) != 0 {
		t.Error("client of another session received the message")
	}

	// A full send buffer drops the client
	hub.broadcastMessage(&Message{SessionID: "aaaa", Event: EventStateUpdate})
	if _, exists := hub.sessions["aaaa"]; exists {
		t.Error("slow client should have been dropped")
	}
}

func newTestServer(t *testing.T, hub *Hub, state *engine.RoundState) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), state)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return message
}

func TestWebSocketInitialState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	state := &engine.RoundState{RoundID: "r1", Phase: engine.PhaseActive, Clock: "03:00", Words: []string{"GATO"}}
	server := newTestServer(t, hub, state)
	conn := dial(t, server, "ws01")

	message := readMessage(t, conn)
	if message.Event != EventStateUpdate {
		t.Errorf("Expected initial %s, got %s", EventStateUpdate, message.Event)
	}
	if message.RoundState == nil || message.RoundState.Clock != "03:00" {
		t.Errorf("Initial state not received: %+v", message.RoundState)
	}
}

func TestWebSocketReceivesPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	server := newTestServer(t, hub, &engine.RoundState{RoundID: "r1"})
	conn := dial(t, server, "ws02")
	readMessage(t, conn)

	// Registration happens on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	hub.Publish("ws02", []engine.Event{{Type: engine.EventGameOver, Phase: engine.PhaseTimedOut}},
		&engine.RoundState{RoundID: "r1", Phase: engine.PhaseTimedOut, Clock: "00:00"})

	message := readMessage(t, conn)
	if message.Event != string(engine.EventGameOver) {
		t.Errorf("Expected game_over, got %s", message.Event)
	}
	if message.RoundState.Phase != engine.PhaseTimedOut {
		t.Errorf("Expected timed_out phase, got %s", message.RoundState.Phase)
	}
}
