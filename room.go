package main

import (
	"encoding/json"
	"sync"
	"time"
)

// defaultPomodoroState seeds every new room: a stopped 25-minute work block.
var defaultPomodoroState = json.RawMessage(`{"mode":"work","timeLeft":1500,"isRunning":false}`)

// Member is a connection's presence inside one room.
type Member struct {
	ConnID string
	Name   string
}

// Room holds the ephemeral shared state of one study session: members in
// join order, the full chat history, the last Pomodoro state and the last
// whiteboard snapshot. Chat, Pomodoro and whiteboard payloads are opaque;
// Pomodoro and whiteboard are last-writer-wins.
type Room struct {
	id string

	mu           sync.RWMutex
	members      []Member // join order
	index        map[string]int
	chat         []json.RawMessage
	pomodoro     json.RawMessage
	whiteboard   json.RawMessage // nil until first draw
	hostID       string          // sticky: set at creation, reassigned on host leave
	lastActivity time.Time
}

func NewRoom(id string) *Room {
	return &Room{
		id:           id,
		index:        make(map[string]int),
		chat:         make([]json.RawMessage, 0),
		pomodoro:     defaultPomodoroState,
		lastActivity: time.Now(),
	}
}

func (r *Room) ID() string {
	return r.id
}

// AddMember appends the member in join order. Re-adding an existing
// connection only refreshes the display name; position and cardinality
// are unchanged. The first member ever added becomes the host.
func (r *Room) AddMember(connID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastActivity = time.Now()
	if i, ok := r.index[connID]; ok {
		r.members[i].Name = name
		return
	}
	r.index[connID] = len(r.members)
	r.members = append(r.members, Member{ConnID: connID, Name: name})
	if r.hostID == "" {
		r.hostID = connID
	}
}

// RemoveMember drops the member and returns the remaining count. If the
// host left, the next member in join order inherits the host role.
func (r *Room) RemoveMember(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[connID]
	if !ok {
		return len(r.members)
	}
	r.lastActivity = time.Now()
	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.index, connID)
	for j := i; j < len(r.members); j++ {
		r.index[r.members[j].ConnID] = j
	}

	if r.hostID == connID {
		if len(r.members) > 0 {
			r.hostID = r.members[0].ConnID
		} else {
			r.hostID = ""
		}
	}
	return len(r.members)
}

// Members returns the current members in join order.
func (r *Room) Members() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) Host() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

func (r *Room) AppendChat(msg json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chat = append(r.chat, msg)
	r.lastActivity = time.Now()
}

// ChatHistory returns the ordered history. The slice is a copy; entries
// are never mutated after append.
func (r *Room) ChatHistory() []json.RawMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]json.RawMessage, len(r.chat))
	copy(out, r.chat)
	return out
}

func (r *Room) SetPomodoro(state json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pomodoro = state
	r.lastActivity = time.Now()
}

func (r *Room) SetWhiteboard(data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.whiteboard = data
	r.lastActivity = time.Now()
}

// Snapshot captures host, whiteboard, chat history and Pomodoro state in
// one consistent read, for the room-state reply to a new joiner.
func (r *Room) Snapshot() *RoomStatePayload {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chat := make([]json.RawMessage, len(r.chat))
	copy(chat, r.chat)
	return &RoomStatePayload{
		Host:          r.hostID,
		Whiteboard:    r.whiteboard,
		ChatHistory:   chat,
		PomodoroState: r.pomodoro,
	}
}

func (r *Room) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActivity
}
