package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, cfg *Config) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	s := NewServer(cfg, hub)
	ts := httptest.NewServer(s.srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts, hub
}

func wsDial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(&Envelope{Event: event, Data: data}))
}

func wsRecv(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, want, env.Event)
	return env.Data
}

// TestServer_FullSession walks two live WebSocket clients through a whole
// study session: join and peer discovery, a signaling round trip, chat
// fan-out that skips the sender, Pomodoro sync, and leave cleanup.
func TestServer_FullSession(t *testing.T) {
	ts, hub := startTestServer(t, testConfig())

	// Alice joins an empty room.
	alice := wsDial(t, ts)
	wsSend(t, alice, evJoinRoom, &JoinRoomPayload{RoomID: "r1", UserName: "Alice"})

	var peers []PeerInfo
	require.NoError(t, json.Unmarshal(wsRecv(t, alice, evAllUsers), &peers))
	assert.Empty(t, peers)

	var state RoomStatePayload
	require.NoError(t, json.Unmarshal(wsRecv(t, alice, evRoomState), &state))
	assert.Empty(t, state.ChatHistory)

	// Bob joins and discovers Alice.
	bob := wsDial(t, ts)
	wsSend(t, bob, evJoinRoom, &JoinRoomPayload{RoomID: "r1", UserName: "Bob"})

	require.NoError(t, json.Unmarshal(wsRecv(t, bob, evAllUsers), &peers))
	require.Len(t, peers, 1)
	assert.Equal(t, "Alice", peers[0].Name)
	aliceID := peers[0].ID
	wsRecv(t, bob, evRoomState)

	// Bob initiates signaling toward Alice; Alice answers.
	wsSend(t, bob, evSendingSignal, &SendingSignalPayload{
		UserToSignal: aliceID,
		Signal:       json.RawMessage(`{"sdp":"offer"}`),
		Name:         "Bob",
	})
	var joined UserJoinedPayload
	require.NoError(t, json.Unmarshal(wsRecv(t, alice, evUserJoined), &joined))
	assert.Equal(t, "Bob", joined.Name)
	assert.JSONEq(t, `{"sdp":"offer"}`, string(joined.Signal))
	bobID := joined.CallerID

	wsSend(t, alice, evReturningSignal, &ReturningSignalPayload{
		CallerID: bobID,
		Signal:   json.RawMessage(`{"sdp":"answer"}`),
	})
	var returned ReturnedSignalPayload
	require.NoError(t, json.Unmarshal(wsRecv(t, bob, evReceivingReturnedSignal), &returned))
	assert.Equal(t, aliceID, returned.ID)

	// Alice chats; Bob receives it, Alice does not. Bob's follow-up timer
	// sync must be the next frame Alice sees: per-connection FIFO means an
	// echoed chat would have arrived first.
	wsSend(t, alice, evSendChatMessage, &ChatMessagePayload{
		RoomID: "r1", Message: json.RawMessage(`"hi"`),
	})
	assert.Equal(t, `"hi"`, string(wsRecv(t, bob, evReceiveChatMessage)))

	wsSend(t, bob, evSyncPomodoro, &SyncPomodoroPayload{
		RoomID: "r1", NewState: json.RawMessage(`{"mode":"work","timeLeft":1499,"isRunning":true}`),
	})
	pomo := wsRecv(t, alice, evSyncPomodoro)
	assert.JSONEq(t, `{"mode":"work","timeLeft":1499,"isRunning":true}`, string(pomo))

	// Bob disconnects; Alice is told who left.
	bob.Close()
	var left UserLeftPayload
	require.NoError(t, json.Unmarshal(wsRecv(t, alice, evUserLeft), &left))
	assert.Equal(t, bobID, left.ID)

	// Alice leaves too; the room disappears from the store.
	alice.Close()
	require.Eventually(t, func() bool {
		return hub.RoomCount() == 0 && hub.ConnCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_Health(t *testing.T) {
	ts, _ := startTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestServer_Stats(t *testing.T) {
	ts, _ := startTestServer(t, testConfig())

	alice := wsDial(t, ts)
	wsSend(t, alice, evJoinRoom, &JoinRoomPayload{RoomID: "r1", UserName: "Alice"})
	wsRecv(t, alice, evAllUsers)

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats map[string]int
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats["rooms"])
	assert.Equal(t, 1, stats["connections"])
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitPerIP = 1 // burst of 2
	ts, _ := startTestServer(t, cfg)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	for i := 0; i < 2; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err, "dial %d should pass the limiter", i)
		defer conn.Close()
	}

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
