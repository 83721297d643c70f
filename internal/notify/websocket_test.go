package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironvale/configcore/internal/configstore"
)

func testWSSettings() configstore.WebSocketSettings {
	return configstore.WebSocketSettings{
		PingIntervalSeconds: 30,
		PongTimeoutSeconds:  10,
		MaxMessageSize:      8192,
	}
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleUpgrade))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // Test deadline
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return msg
}

func TestHub_SubscribeAndBroadcast(t *testing.T) {
	hub := NewHub(testWSSettings(), nil)
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "1",
		Payload: map[string]any{"channels": []string{ChannelConfigChanged}},
	}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if resp := readMessage(t, conn); resp.Type != WSTypeResponse {
		t.Fatalf("subscribe response type = %q, want response", resp.Type)
	}

	hub.BroadcastAsync(Event{
		Type:      EventTypeConfigurationChanged,
		Data:      EventData{Key: "app.name", NewValue: "configcore"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})

	evt := readMessage(t, conn)
	if evt.Type != WSTypeEvent || evt.EventType != ChannelConfigChanged {
		t.Fatalf("event = %+v", evt)
	}

	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var delivered Event
	if err := json.Unmarshal(payload, &delivered); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if delivered.Data.Key != "app.name" || delivered.Data.NewValue != "configcore" {
		t.Errorf("delivered = %+v", delivered.Data)
	}
}

func TestHub_UnsubscribedClientReceivesNothing(t *testing.T) {
	hub := NewHub(testWSSettings(), nil)
	conn := dialHub(t, hub)

	hub.BroadcastAsync(Event{Type: EventTypeConfigurationChanged})

	//nolint:errcheck // Test deadline
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err == nil {
		t.Errorf("unsubscribed client received %+v, want read timeout", msg)
	}
}

func TestHub_PingPong(t *testing.T) {
	hub := NewHub(testWSSettings(), nil)
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(WSMessage{Type: WSTypePing, ID: "p1"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	resp := readMessage(t, conn)
	if resp.Type != WSTypePong || resp.ID != "p1" {
		t.Errorf("response = %+v, want pong with id p1", resp)
	}
}

func TestHub_UnknownMessageType(t *testing.T) {
	hub := NewHub(testWSSettings(), nil)
	conn := dialHub(t, hub)

	if err := conn.WriteJSON(WSMessage{Type: "bogus", ID: "x"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if resp := readMessage(t, conn); resp.Type != WSTypeError {
		t.Errorf("response type = %q, want error", resp.Type)
	}
}

func TestHub_ClientCount(t *testing.T) {
	hub := NewHub(testWSSettings(), nil)
	if hub.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d, want 0", hub.ClientCount())
	}

	conn := dialHub(t, hub)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
