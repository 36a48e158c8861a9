package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/wricardo/foxandgeese/game/engine"
	"github.com/wricardo/foxandgeese/game/presenter"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, 256),
	}
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		return message
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}
	return Message{}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if cap(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected broadcast buffer %d, got %d", broadcastBuffer, cap(hub.broadcast))
	}
	if hub.logger == nil {
		t.Error("Hub logger is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
	if _, ok := <-client.send; ok {
		t.Error("Send channel should be closed")
	}

	// A second unregister is a no-op
	hub.unregisterClient(client)
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub(nil)
	sessionID := "multi-client-session"

	client1 := newTestClient(hub, sessionID)
	client2 := newTestClient(hub, sessionID)
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

func TestHubBroadcastStatus(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.BroadcastStatus("BROADCAST-TEST", map[string]interface{}{"round": 3})
	hub.broadcastMessage(<-hub.broadcast)

	message := receive(t, client)
	if message.SessionID != "BROADCAST-TEST" {
		t.Errorf("Expected session id to be echoed, got %s", message.SessionID)
	}
	if message.Event != EventStatusUpdate {
		t.Errorf("Expected event %s, got %s", EventStatusUpdate, message.Event)
	}
	status, ok := message.Status.(map[string]interface{})
	if !ok || status["round"] != float64(3) {
		t.Errorf("Unexpected status %v", message.Status)
	}

	if len(other.send) != 0 {
		t.Error("Clients of other sessions should not receive the message")
	}
}

func TestHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewHub(nil)

	for i := 0; i < broadcastBuffer+10; i++ {
		hub.BroadcastEvent("full", "custom-event", i)
	}

	if len(hub.broadcast) != broadcastBuffer {
		t.Errorf("Expected a full queue of %d, got %d", broadcastBuffer, len(hub.broadcast))
	}
}

func TestHubMsgpackClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "binary")
	client.binary = true
	hub.registerClient(client)

	results := map[string]engine.MoveResult{"goose_000": {X: 1, Y: 2, IsDead: true}}
	hub.BroadcastEvent("binary", EventAnimateEntities, results)
	hub.broadcastMessage(<-hub.broadcast)

	var data []byte
	select {
	case data = <-client.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("No message received within timeout")
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var decoded struct {
		SessionID string                       `json:"session_id"`
		Event     string                       `json:"event"`
		Data      map[string]engine.MoveResult `json:"data"`
	}
	if err := dec.Decode(&decoded); err != nil {
		t.Fatalf("Failed to decode msgpack: %v", err)
	}
	if decoded.Event != EventAnimateEntities || decoded.SessionID != "binary" {
		t.Errorf("Unexpected message %+v", decoded)
	}
	if got := decoded.Data["goose_000"]; got != (engine.MoveResult{X: 1, Y: 2, IsDead: true}) {
		t.Errorf("Unexpected move result %+v", got)
	}
}

func TestSessionCollaborator(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "collab")
	hub.registerClient(client)

	collaborator := hub.Collaborator("collab")

	tests := []struct {
		name   string
		notify func()
		event  string
		check  func(t *testing.T, data interface{})
	}{
		{
			name:   "mission start",
			notify: func() { collaborator.OnMissionStartStageChanged(presenter.InProgress) },
			event:  EventMissionStart,
			check: func(t *testing.T, data interface{}) {
				m := data.(map[string]interface{})
				if m["stage"] != string(presenter.InProgress) {
					t.Errorf("Unexpected stage %v", m["stage"])
				}
			},
		},
		{
			name: "animate entities",
			notify: func() {
				collaborator.OnEntitiesShouldAnimate(map[string]engine.MoveResult{"fox": {X: 2, Y: 0}})
			},
			event: EventAnimateEntities,
			check: func(t *testing.T, data interface{}) {
				fox := data.(map[string]interface{})["fox"].(map[string]interface{})
				if fox["x"] != float64(2) || fox["is_dead"] != false {
					t.Errorf("Unexpected fox result %v", fox)
				}
			},
		},
		{
			name:   "mission complete",
			notify: func() { collaborator.OnMissionCompleteStageChanged(presenter.Complete, presenter.MessageWin) },
			event:  EventMissionComplete,
			check: func(t *testing.T, data interface{}) {
				m := data.(map[string]interface{})
				if m["stage"] != string(presenter.Complete) || m["message_id"] != presenter.MessageWin {
					t.Errorf("Unexpected data %v", m)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.notify()
			hub.broadcastMessage(<-hub.broadcast)

			message := receive(t, client)
			if message.Event != tt.event {
				t.Fatalf("Expected event %s, got %s", tt.event, message.Event)
			}
			tt.check(t, message.Data)
		})
	}
}

func TestWebSocketMessageReceive(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"), r.URL.Query().Get("encoding") == "msgpack")
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=msg-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitForClients(t, hub, "MSG-TEST", 1)

	hub.BroadcastStatus("msg-test", map[string]interface{}{"mission_status": "not finished"})

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	frameType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	if frameType != websocket.TextMessage {
		t.Errorf("Expected a text frame, got %d", frameType)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.Event != EventStatusUpdate {
		t.Errorf("Expected status_update, got %s", message.Event)
	}

	conn.Close()
	waitForClients(t, hub, "msg-test", 0)
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount(sessionID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients in %s, got %d", want, sessionID, hub.ClientCount(sessionID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubStopped(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "stopped", false)
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "stopped", 1)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// the open client's close frame arrives and its read loop exits
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed by the hub")
	}

	done := make(chan int, 1)
	go func() {
		late, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err == nil {
			late.SetReadDeadline(time.Now().Add(time.Second))
			late.ReadMessage()
			late.Close()
		}
		done <- hub.ClientCount("stopped")
	}()

	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("Expected 0 clients after stop, got %d", n)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ServeWS or ClientCount blocked after Run returned")
	}
}
