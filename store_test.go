package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStore_GetOrCreateIdempotent(t *testing.T) {
	s := NewRoomStore()

	r1 := s.GetOrCreate("room-a")
	r2 := s.GetOrCreate("room-a")
	assert.Same(t, r1, r2, "GetOrCreate must return the existing room")
	assert.Equal(t, 1, s.RoomCount())
}

func TestRoomStore_GetNeverCreates(t *testing.T) {
	s := NewRoomStore()

	_, ok := s.Get("room-a")
	assert.False(t, ok)
	assert.Equal(t, 0, s.RoomCount())
}

func TestRoomStore_DeleteOnEmpty(t *testing.T) {
	s := NewRoomStore()

	room := s.GetOrCreate("room-a")
	room.AddMember("conn-1", "Alice")
	room.AddMember("conn-2", "Bob")

	assert.False(t, s.RemoveMember("room-a", "conn-1"), "room still has a member")
	_, ok := s.Get("room-a")
	require.True(t, ok)

	assert.True(t, s.RemoveMember("room-a", "conn-2"), "last member leaving deletes the room")
	_, ok = s.Get("room-a")
	assert.False(t, ok, "empty room must be gone from the store")
	assert.Equal(t, 0, s.RoomCount())
}

func TestRoomStore_RecreatedRoomIsFresh(t *testing.T) {
	s := NewRoomStore()

	room := s.GetOrCreate("room-a")
	room.AddMember("conn-1", "Alice")
	room.AppendChat(json.RawMessage(`"old message"`))
	room.SetPomodoro(json.RawMessage(`{"mode":"break","timeLeft":1,"isRunning":true}`))
	room.SetWhiteboard(json.RawMessage(`{"shapes":[1]}`))
	s.RemoveMember("room-a", "conn-1")

	// Same id, brand new state: nothing leaks from the deleted room.
	fresh := s.GetOrCreate("room-a")
	snap := fresh.Snapshot()
	assert.Empty(t, snap.ChatHistory)
	assert.JSONEq(t, string(defaultPomodoroState), string(snap.PomodoroState))
	assert.Nil(t, snap.Whiteboard)
	assert.Equal(t, 0, fresh.MemberCount())
}

func TestRoomStore_AbsentRoomMutationsNoOp(t *testing.T) {
	s := NewRoomStore()

	// None of these may create a room or panic.
	s.AppendChat("ghost", json.RawMessage(`"hi"`))
	s.SetPomodoro("ghost", json.RawMessage(`{}`))
	s.SetWhiteboard("ghost", json.RawMessage(`{}`))
	assert.False(t, s.RemoveMember("ghost", "conn-1"))
	assert.Equal(t, 0, s.RoomCount())
}

func TestRoomStore_Rooms(t *testing.T) {
	s := NewRoomStore()
	s.GetOrCreate("room-a")
	s.GetOrCreate("room-b")

	rooms := s.Rooms()
	require.Len(t, rooms, 2)
	ids := []string{rooms[0].ID(), rooms[1].ID()}
	assert.ElementsMatch(t, []string{"room-a", "room-b"}, ids)
}
