package main

import "encoding/json"

// Event names, client → server.
const (
	evJoinRoom           = "join-room"
	evSendingSignal      = "sending-signal"
	evReturningSignal    = "returning-signal"
	evSendChatMessage    = "send-chat-message"
	evRequestChatHistory = "request-chat-history"
	evSyncPomodoro       = "sync-pomodoro"
	evWhiteboardDraw     = "whiteboard-draw"
)

// Event names, server → client. sync-pomodoro and whiteboard-draw are
// relayed under their inbound names.
const (
	evAllUsers                = "all-users"
	evRoomState               = "room-state"
	evUserJoined              = "user-joined"
	evReceivingReturnedSignal = "receiving-returned-signal"
	evReceiveChatMessage      = "receive-chat-message"
	evChatHistory             = "chat-history"
	evUserLeft                = "user-left"
	evError                   = "error"
)

// Envelope frames every message in both directions. Data stays raw until
// the event name selects a payload shape; opaque payloads are never decoded.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinRoomPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

type SendingSignalPayload struct {
	UserToSignal string          `json:"userToSignal"`
	CallerID     string          `json:"callerID"`
	Signal       json.RawMessage `json:"signal"`
	Name         string          `json:"name"`
}

type ReturningSignalPayload struct {
	CallerID string          `json:"callerID"`
	Signal   json.RawMessage `json:"signal"`
}

type ChatMessagePayload struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

type SyncPomodoroPayload struct {
	RoomID   string          `json:"roomId"`
	NewState json.RawMessage `json:"newState"`
}

type WhiteboardDrawPayload struct {
	RoomID string          `json:"roomId"`
	Data   json.RawMessage `json:"data"`
}

// PeerInfo identifies one existing member in the all-users reply.
type PeerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomStatePayload is the full snapshot delivered to a new joiner.
// Whiteboard is the last full-canvas payload received for the room, or
// null if nobody has drawn yet. Snapshots replace wholesale, they are
// not deltas.
type RoomStatePayload struct {
	Host          string            `json:"host"`
	Whiteboard    json.RawMessage   `json:"whiteboard"`
	ChatHistory   []json.RawMessage `json:"chatHistory"`
	PomodoroState json.RawMessage   `json:"pomodoroState"`
}

type UserJoinedPayload struct {
	Signal   json.RawMessage `json:"signal"`
	CallerID string          `json:"callerID"`
	Name     string          `json:"name"`
}

type ReturnedSignalPayload struct {
	Signal json.RawMessage `json:"signal"`
	ID     string          `json:"id"`
}

type UserLeftPayload struct {
	ID string `json:"id"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// encodeEvent builds a wire frame for a server → client event.
func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Envelope{Event: event, Data: data})
}
