// Smoke test: walks two WebSocket clients through a full study-room
// session against a live server: join, peer discovery, signaling round
// trip, chat fan-out, Pomodoro sync and leave notification.
// Usage: go run ./cmd/smoketest -server ws://localhost:3001/ws
package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

var serverURL = flag.String("server", "ws://localhost:3001/ws", "server WebSocket URL")

const roomID = "smoke-test-room"

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	// --- Alice joins an empty room ---
	log.Println(">> Connecting Alice...")
	alice := dial(*serverURL)
	defer alice.Close()

	send(alice, "join-room", map[string]string{"roomId": roomID, "userName": "Alice"})
	aliceUsers := expect(alice, "all-users")
	var alicePeers []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	mustUnmarshal(aliceUsers, &alicePeers)
	if len(alicePeers) != 0 {
		log.Fatalf("Alice expected empty peer list, got %d peers", len(alicePeers))
	}
	expect(alice, "room-state")
	log.Println("   Alice joined, empty room ✓")

	// --- Bob joins and discovers Alice ---
	log.Println(">> Connecting Bob...")
	bob := dial(*serverURL)
	defer bob.Close()

	send(bob, "join-room", map[string]string{"roomId": roomID, "userName": "Bob"})
	bobUsers := expect(bob, "all-users")
	var bobPeers []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	mustUnmarshal(bobUsers, &bobPeers)
	if len(bobPeers) != 1 || bobPeers[0].Name != "Alice" {
		log.Fatalf("Bob expected [Alice], got %v", bobPeers)
	}
	aliceID := bobPeers[0].ID
	expect(bob, "room-state")
	log.Println("   Bob joined, sees Alice ✓")

	// --- Signaling round trip: Bob offers, Alice answers ---
	log.Println(">> Bob signaling Alice...")
	send(bob, "sending-signal", map[string]any{
		"userToSignal": aliceID,
		"signal":       json.RawMessage(`{"sdp":"offer-from-bob"}`),
		"name":         "Bob",
	})
	joined := expect(alice, "user-joined")
	var offer struct {
		Signal   json.RawMessage `json:"signal"`
		CallerID string          `json:"callerID"`
		Name     string          `json:"name"`
	}
	mustUnmarshal(joined, &offer)
	if offer.Name != "Bob" || string(offer.Signal) != `{"sdp":"offer-from-bob"}` {
		log.Fatalf("Alice got unexpected offer: %+v", offer)
	}
	log.Println("   Alice received offer ✓")

	send(alice, "returning-signal", map[string]any{
		"callerID": offer.CallerID,
		"signal":   json.RawMessage(`{"sdp":"answer-from-alice"}`),
	})
	answer := expect(bob, "receiving-returned-signal")
	var returned struct {
		Signal json.RawMessage `json:"signal"`
		ID     string          `json:"id"`
	}
	mustUnmarshal(answer, &returned)
	if returned.ID != aliceID || string(returned.Signal) != `{"sdp":"answer-from-alice"}` {
		log.Fatalf("Bob got unexpected answer: %+v", returned)
	}
	log.Println("   Bob received answer ✓")

	// --- Chat: Alice sends, Bob receives ---
	log.Println(">> Alice sending chat...")
	send(alice, "send-chat-message", map[string]any{
		"roomId":  roomID,
		"message": json.RawMessage(`{"from":"Alice","text":"hi"}`),
	})
	chat := expect(bob, "receive-chat-message")
	log.Printf("   Bob received chat: %s ✓", chat)

	// --- Pomodoro sync: Bob starts the timer, Alice sees it ---
	log.Println(">> Bob syncing Pomodoro...")
	send(bob, "sync-pomodoro", map[string]any{
		"roomId":   roomID,
		"newState": json.RawMessage(`{"mode":"work","timeLeft":1499,"isRunning":true}`),
	})
	pomo := expect(alice, "sync-pomodoro")
	log.Printf("   Alice received timer state: %s ✓", pomo)

	// --- Bob leaves, Alice is notified ---
	log.Println(">> Bob disconnecting...")
	bob.Close()
	left := expect(alice, "user-left")
	log.Printf("   Alice received user-left: %s ✓", left)

	log.Println("═══════════════════════════")
	log.Println("  SMOKE TEST PASSED ✓")
	log.Println("═══════════════════════════")
}

func dial(url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	return conn
}

func send(conn *websocket.Conn, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal %s: %v", event, err)
	}
	if err := conn.WriteJSON(&envelope{Event: event, Data: data}); err != nil {
		log.Fatalf("send %s: %v", event, err)
	}
}

// expect reads frames until one matches the wanted event, failing on
// timeout or an error event.
func expect(conn *websocket.Conn, event string) json.RawMessage {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			log.Fatalf("waiting for %s: %v", event, err)
		}
		if env.Event == "error" {
			log.Fatalf("waiting for %s, got error: %s", event, env.Data)
		}
		if env.Event == event {
			return env.Data
		}
	}
}

func mustUnmarshal(data json.RawMessage, v any) {
	if err := json.Unmarshal(data, v); err != nil {
		log.Fatalf("unmarshal: %v", err)
	}
}
