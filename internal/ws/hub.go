package ws

import (
	"sync"

	"boardsync/internal/metrics"
)

// Hub tracks which connections belong to which board room and to which user's
// private room, and fans frames out to them. Membership is mutated only by the
// gateway and the Event Router; broadcast takes a read lock and writes through
// each client's buffered send channel.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	users map[uint]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		users: make(map[uint]map[*Client]struct{}),
	}
}

func (h *Hub) joinRoom(boardID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[boardID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[boardID] = room
	}
	room[c] = struct{}{}
}

func (h *Hub) leaveRoom(boardID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[boardID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, boardID)
		}
	}
}

// addUser puts the connection in its owner's private room, the delivery
// target for direct notifications such as invites.
func (h *Hub) addUser(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.users[c.identity.ID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.users[c.identity.ID] = conns
	}
	conns[c] = struct{}{}
}

func (h *Hub) removeUser(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.users[c.identity.ID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.users, c.identity.ID)
		}
	}
}

// Broadcast sends a frame to every connection in a board room. Pass except to
// skip the originator. A client whose buffer is full loses the frame rather
// than stalling the room.
func (h *Hub) Broadcast(boardID string, frame []byte, except *Client) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[boardID]))
	for c := range h.rooms[boardID] {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.enqueue(frame)
	}
}

// ToUser sends a frame to every live connection of one user.
func (h *Hub) ToUser(userID uint, frame []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.users[userID]))
	for c := range h.users[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.enqueue(frame)
	}
}

// RoomSize reports how many connections are joined to a board room.
func (h *Hub) RoomSize(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

// enqueue hands a frame to the client's write pump without blocking. Frames
// for a closed or saturated client are dropped, not waited on.
func (c *Client) enqueue(frame []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- frame:
	default:
		metrics.BroadcastDroppedTotal.Inc()
		c.logger.Warn().Msg("send buffer full, dropping frame")
	}
}
