package main

import "sync"

// ConnRegistry maps live connection ids to their current room, nothing more.
// Every operation is total: unknown ids read as "no association" and are
// never an error.
type ConnRegistry struct {
	mu    sync.RWMutex
	rooms map[string]string // conn id → room id ("" = connected, unjoined)
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		rooms: make(map[string]string),
	}
}

// Register records a freshly connected transport session with no room.
func (cr *ConnRegistry) Register(connID string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.rooms[connID] = ""
}

// SetRoom binds a connection to a room, replacing any prior binding.
func (cr *ConnRegistry) SetRoom(connID, roomID string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.rooms[connID] = roomID
}

// Room returns the room the connection joined, if any.
func (cr *ConnRegistry) Room(connID string) (string, bool) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	roomID := cr.rooms[connID]
	return roomID, roomID != ""
}

// Unregister drops the connection and returns the room it was in so the
// caller can run room cleanup.
func (cr *ConnRegistry) Unregister(connID string) (string, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	roomID := cr.rooms[connID]
	delete(cr.rooms, connID)
	return roomID, roomID != ""
}

// SameRoom reports whether two connections are currently joined to the
// same room.
func (cr *ConnRegistry) SameRoom(a, b string) bool {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	roomA := cr.rooms[a]
	return roomA != "" && roomA == cr.rooms[b]
}

// Count returns the number of live connections.
func (cr *ConnRegistry) Count() int {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return len(cr.rooms)
}
