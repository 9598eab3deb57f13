// Package relay implements the room-based websocket relay. The hub
// groups connections into rooms keyed by pairing code and forwards
// opaque frames between room members; it holds no state beyond the
// in-memory room table, rebuilt empty on restart.
package relay

import (
	"encoding/json"
	"log/slog"
)

// inboundFrame pairs a raw frame with the connection that sent it.
type inboundFrame struct {
	sender *Client
	data   []byte
}

// Hub is the central brain of the relay. All room state is owned by the
// single goroutine running Run, so join, leave and relay on the same
// room are atomic with respect to each other.
type Hub struct {
	// rooms maps normalized pairing codes to live rooms.
	rooms map[string]*Room

	// Register is the channel for attaching new clients.
	Register chan *Client

	// Unregister is the channel for detaching clients on disconnect.
	Unregister chan *Client

	// Inbound carries raw frames read off client connections.
	Inbound chan *inboundFrame
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *inboundFrame),
	}
}

// Run starts the hub's main processing loop. Run it in its own
// goroutine; it returns only when the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			slog.Info("client registered", "client", client.ID, "room", client.RoomCode, "channel", client.Kind)
			if client.RoomCode != "" {
				h.join(client, client.RoomCode)
			}

		case client := <-h.Unregister:
			h.leave(client)
			close(client.Send)

		case frame := <-h.Inbound:
			h.dispatch(frame)
		}
	}
}

// dispatch parses the envelope of an inbound frame and routes it.
// Malformed input is dropped and logged; the connection stays open.
func (h *Hub) dispatch(frame *inboundFrame) {
	var env Envelope
	if err := json.Unmarshal(frame.data, &env); err != nil || env.Type == "" {
		slog.Warn("dropping malformed frame", "client", frame.sender.ID, "err", err)
		return
	}

	switch env.Type {
	case TypeJoin:
		room := env.Room
		if room == "" {
			room = env.SessionID
		}
		h.join(frame.sender, room)

	case TypeHeartbeat:
		// Answered immediately, never relayed.
		frame.sender.trySend(marshalType(TypeHeartbeatAck))

	default:
		h.relay(frame.sender, frame.data)
	}
}

// join attaches the client to the room named by code, creating the room
// if absent. Joining a room the client is already in is a no-op.
//
// Third-joiner policy: reject-new. A joiner that would be the third
// member of its channel kind gets an error frame and keeps its
// connection, roomless; the existing pair's relay targets are never
// disturbed.
func (h *Hub) join(client *Client, code string) {
	if code == "" {
		slog.Warn("join without room code", "client", client.ID)
		client.trySend(marshalError("room code required"))
		return
	}

	if client.room != nil {
		if client.room.Code == code {
			return
		}
		// Joining a different room implies leaving the current one.
		h.leave(client)
	}

	room, ok := h.rooms[code]
	if !ok {
		room = newRoom(code)
		h.rooms[code] = room
		slog.Info("room created", "room", code)
	}

	if room.countKind(client.Kind) >= 2 {
		slog.Warn("room full, rejecting joiner", "room", code, "client", client.ID, "channel", client.Kind)
		client.trySend(marshalError("room is full"))
		return
	}

	peers := room.othersSameKind(client)
	room.members[client] = struct{}{}
	client.room = room
	client.RoomCode = code

	slog.Info("client joined room", "room", code, "client", client.ID, "channel", client.Kind)
	client.trySend(marshalJoined(code))

	// A second member makes a pair: both sides learn about each other.
	if len(peers) > 0 {
		client.trySend(marshalType(TypePeerJoined))
		for _, peer := range peers {
			peer.trySend(marshalType(TypePeerJoined))
		}
	}
}

// leave removes the client from its room, notifies the remaining
// members, and deletes the room once empty.
func (h *Hub) leave(client *Client) {
	room := client.room
	if room == nil {
		return
	}

	delete(room.members, client)
	client.room = nil

	for _, peer := range room.othersSameKind(client) {
		peer.trySend(marshalType(TypePeerLeft))
	}

	if len(room.members) == 0 {
		delete(h.rooms, room.Code)
		slog.Info("room deleted", "room", room.Code)
	} else {
		slog.Info("client left room", "room", room.Code, "client", client.ID)
	}
}

// relay forwards a frame verbatim to every other same-kind member of
// the sender's room. Delivery is per-destination: each target has its
// own buffered queue and write pump.
func (h *Hub) relay(sender *Client, data []byte) {
	if sender.room == nil {
		slog.Warn("dropping frame from roomless client", "client", sender.ID)
		return
	}

	for _, peer := range sender.room.othersSameKind(sender) {
		peer.trySend(data)
	}
}
