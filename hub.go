package main

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

const sweepInterval = 60 * time.Second

// clientEvent is one inbound frame, queued for serialized processing.
type clientEvent struct {
	client *Client
	name   string
	data   json.RawMessage
}

// Hub coordinates the whole room protocol. Run drains all channels on a
// single goroutine, so every room-mutating step (join, chat, timer sync,
// whiteboard, leave) executes as a discrete non-interleaved operation
// against the store. That serialization is what the state invariants rely on.
type Hub struct {
	cfg      *Config
	store    *RoomStore
	registry *ConnRegistry
	relay    *SignalingRelay

	// conns is touched only on the Run goroutine.
	conns map[string]*Client

	registerCh   chan *Client
	unregisterCh chan *Client
	eventCh      chan *clientEvent
}

func NewHub(cfg *Config) *Hub {
	h := &Hub{
		cfg:          cfg,
		store:        NewRoomStore(),
		registry:     NewConnRegistry(),
		conns:        make(map[string]*Client),
		registerCh:   make(chan *Client, 64),
		unregisterCh: make(chan *Client, 64),
		eventCh:      make(chan *clientEvent, 2048),
	}
	h.relay = NewSignalingRelay(h.registry, h.peer)
	return h
}

func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.registerCh:
			h.addClient(client)

		case client := <-h.unregisterCh:
			h.removeClient(client)

		case ev := <-h.eventCh:
			h.handleEvent(ev)

		case <-ticker.C:
			h.sweepIdleRooms()
		}
	}
}

func (h *Hub) Register(c *Client) {
	h.registerCh <- c
}

func (h *Hub) Unregister(c *Client) {
	h.unregisterCh <- c
}

func (h *Hub) Dispatch(ev *clientEvent) {
	h.eventCh <- ev
}

func (h *Hub) RoomCount() int {
	return h.store.RoomCount()
}

func (h *Hub) ConnCount() int {
	return h.registry.Count()
}

func (h *Hub) peer(connID string) (*Client, bool) {
	c, ok := h.conns[connID]
	return c, ok
}

func (h *Hub) addClient(c *Client) {
	h.conns[c.connID] = c
	h.registry.Register(c.connID)
	log.Printf("conn %s connected from %s", short(c.connID), c.ip)

	go c.ReadPump()
	go c.WritePump()
}

func (h *Hub) removeClient(c *Client) {
	if _, ok := h.conns[c.connID]; !ok {
		return
	}
	if roomID, joined := h.registry.Room(c.connID); joined {
		h.leaveRoom(c.connID, roomID)
	}
	h.registry.Unregister(c.connID)
	delete(h.conns, c.connID)
	c.Close()
	log.Printf("conn %s disconnected", short(c.connID))
}

// leaveRoom removes the member and either destroys the now-empty room or
// tells the remaining members who left.
func (h *Hub) leaveRoom(connID, roomID string) {
	if h.store.RemoveMember(roomID, connID) {
		log.Printf("room %s destroyed (empty)", roomID)
		return
	}
	h.broadcastRoom(roomID, connID, evUserLeft, &UserLeftPayload{ID: connID})
}

func (h *Hub) handleEvent(ev *clientEvent) {
	switch ev.name {
	case evJoinRoom:
		h.handleJoin(ev.client, ev.data)
	case evSendingSignal:
		h.handleSendingSignal(ev.client, ev.data)
	case evReturningSignal:
		h.handleReturningSignal(ev.client, ev.data)
	case evSendChatMessage:
		h.handleChat(ev.client, ev.data)
	case evRequestChatHistory:
		h.handleChatHistory(ev.client, ev.data)
	case evSyncPomodoro:
		h.handleSyncPomodoro(ev.client, ev.data)
	case evWhiteboardDraw:
		h.handleWhiteboardDraw(ev.client, ev.data)
	default:
		log.Printf("unknown event %q from conn %s", ev.name, short(ev.client.connID))
	}
}

func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var p JoinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}

	// A join from a connection already in another room runs the full leave
	// protocol first, so a connection is in at most one room.
	if prev, joined := h.registry.Room(c.connID); joined && prev != p.RoomID {
		h.leaveRoom(c.connID, prev)
		h.registry.SetRoom(c.connID, "")
	}

	room, exists := h.store.Get(p.RoomID)
	if !exists {
		if h.store.RoomCount() >= h.cfg.MaxRooms {
			h.sendError(c, "room limit reached")
			return
		}
		room = h.store.GetOrCreate(p.RoomID)
	}

	// Peer list is captured before the insert: these are the members the
	// joiner initiates signaling toward.
	current := room.Members()
	rejoining := false
	peers := make([]PeerInfo, 0, len(current))
	for _, m := range current {
		if m.ConnID == c.connID {
			rejoining = true
			continue
		}
		peers = append(peers, PeerInfo{ID: m.ConnID, Name: m.Name})
	}
	if !rejoining && len(current) >= h.cfg.MaxClientsPerRoom {
		h.sendError(c, "room full")
		return
	}

	room.AddMember(c.connID, p.UserName)
	h.registry.SetRoom(c.connID, p.RoomID)

	// Peer discovery is pull-based: only the joiner is told anything, and
	// it opens signaling toward each listed peer itself.
	h.sendTo(c, evAllUsers, peers)
	h.sendTo(c, evRoomState, room.Snapshot())

	log.Printf("%q (conn=%s) joined room %s (%d members)",
		p.UserName, short(c.connID), p.RoomID, room.MemberCount())
}

func (h *Hub) handleSendingSignal(c *Client, data json.RawMessage) {
	var p SendingSignalPayload
	if err := json.Unmarshal(data, &p); err != nil || p.UserToSignal == "" {
		return
	}
	// The caller id is taken from the transport session, never from the
	// payload's callerID field.
	if err := h.relay.RelayOffer(p.UserToSignal, c.connID, p.Name, p.Signal); err != nil {
		h.sendError(c, err.Error())
	}
}

func (h *Hub) handleReturningSignal(c *Client, data json.RawMessage) {
	var p ReturningSignalPayload
	if err := json.Unmarshal(data, &p); err != nil || p.CallerID == "" {
		return
	}
	if err := h.relay.RelayAnswer(p.CallerID, c.connID, p.Signal); err != nil {
		h.sendError(c, err.Error())
	}
}

func (h *Hub) handleChat(c *Client, data json.RawMessage) {
	var p ChatMessagePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	// Append order equals broadcast order, so history replay matches what
	// live members saw. A message racing the room's deletion no-ops.
	h.store.AppendChat(p.RoomID, p.Message)
	h.broadcastRoom(p.RoomID, c.connID, evReceiveChatMessage, p.Message)
}

func (h *Hub) handleChatHistory(c *Client, data json.RawMessage) {
	// The payload is the bare room id string.
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		return
	}
	room, ok := h.store.Get(roomID)
	if !ok {
		return
	}
	h.sendTo(c, evChatHistory, room.ChatHistory())
}

func (h *Hub) handleSyncPomodoro(c *Client, data json.RawMessage) {
	var p SyncPomodoroPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	h.store.SetPomodoro(p.RoomID, p.NewState)
	h.broadcastRoom(p.RoomID, c.connID, evSyncPomodoro, p.NewState)
}

func (h *Hub) handleWhiteboardDraw(c *Client, data json.RawMessage) {
	var p WhiteboardDrawPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	h.store.SetWhiteboard(p.RoomID, p.Data)
	h.broadcastRoom(p.RoomID, c.connID, evWhiteboardDraw, p.Data)
}

// broadcastRoom fans an event out to every member of the room except the
// sender. Absent rooms are a silent no-op.
func (h *Hub) broadcastRoom(roomID, senderID, event string, payload any) {
	room, ok := h.store.Get(roomID)
	if !ok {
		return
	}
	frame, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("encode %s: %v", event, err)
		return
	}
	for _, m := range room.Members() {
		if m.ConnID == senderID {
			continue
		}
		if peer, ok := h.conns[m.ConnID]; ok {
			peer.trySend(frame)
		}
	}
}

func (h *Hub) sendTo(c *Client, event string, payload any) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		log.Printf("encode %s: %v", event, err)
		return
	}
	c.trySend(frame)
}

func (h *Hub) sendError(c *Client, msg string) {
	h.sendTo(c, evError, &ErrorPayload{Error: msg})
}

// sweepIdleRooms disconnects every member of a room with no activity past
// the idle timeout. Each member goes through the normal leave path, so the
// room empties and is deleted under the usual invariant.
func (h *Hub) sweepIdleRooms() {
	cutoff := time.Now().Add(-h.cfg.RoomIdleTimeout)
	for _, room := range h.store.Rooms() {
		if room.LastActivity().After(cutoff) {
			continue
		}
		log.Printf("room %s idle, closing %d connections", room.ID(), room.MemberCount())
		for _, m := range room.Members() {
			if peer, ok := h.conns[m.ConnID]; ok {
				h.removeClient(peer)
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, c := range h.conns {
		c.Close()
	}
	h.conns = make(map[string]*Client)
}

func short(connID string) string {
	if len(connID) > 8 {
		return connID[:8]
	}
	return connID
}
