package main

import (
	"encoding/json"
	"sync"
)

// RoomStore owns every Room for the life of the process. Rooms are created
// lazily on first join and deleted the moment their last member leaves; a
// room id is present here if and only if the room has at least one member
// (or is mid-join). Mutations referencing an absent room are silent no-ops.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room, creating it with default state if needed.
func (s *RoomStore) GetOrCreate(roomID string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		room = NewRoom(roomID)
		s.rooms[roomID] = room
	}
	return room
}

// Get never creates.
func (s *RoomStore) Get(roomID string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

// RemoveMember removes the member and deletes the room entirely when it
// ends up empty. Reports whether the room was deleted.
func (s *RoomStore) RemoveMember(roomID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	if room.RemoveMember(connID) == 0 {
		delete(s.rooms, roomID)
		return true
	}
	return false
}

func (s *RoomStore) AppendChat(roomID string, msg json.RawMessage) {
	if room, ok := s.Get(roomID); ok {
		room.AppendChat(msg)
	}
}

func (s *RoomStore) SetPomodoro(roomID string, state json.RawMessage) {
	if room, ok := s.Get(roomID); ok {
		room.SetPomodoro(state)
	}
}

func (s *RoomStore) SetWhiteboard(roomID string, data json.RawMessage) {
	if room, ok := s.Get(roomID); ok {
		room.SetWhiteboard(data)
	}
}

func (s *RoomStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Rooms returns a snapshot of all live rooms, for the idle sweep.
func (s *RoomStore) Rooms() []*Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}
