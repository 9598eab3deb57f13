package relay

import (
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. SDP bodies dominate;
	// gesture frames are tiny.
	maxMessageSize = 64 * 1024

	// sendBuffer is the per-client outbound queue. Delivery to each
	// peer drains independently through its own write pump, so one
	// stalled socket never blocks delivery to the others.
	sendBuffer = 256
)

// Client is a wrapper for a single websocket connection into the hub.
type Client struct {
	// ID identifies the connection in logs and hub bookkeeping.
	ID string

	// Hub is the hub this client is registered with.
	Hub *Hub

	// Conn is the websocket connection. Nil in hub-level tests, which
	// drive the hub through its channels directly.
	Conn *websocket.Conn

	// RoomCode is the normalized pairing code the client asked for at
	// upgrade time. The hub moves it into a room on registration.
	RoomCode string

	// Kind is the channel plane this connection belongs to.
	Kind ChannelKind

	// Send is the buffered outbound queue drained by WritePump.
	Send chan []byte

	// room is the room the client is currently a member of. Owned by
	// the hub goroutine; never touched elsewhere.
	room *Room
}

// ReadPump pumps raw frames from the websocket connection to the hub.
//
// The server runs ReadPump in a per-connection goroutine, ensuring at
// most one reader per connection. Frames are handed to the hub as-is;
// parsing (and rejecting malformed input) happens there, on the hub
// goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read ended", "client", c.ID, "err", err)
			}
			break
		}

		c.Hub.Inbound <- &inboundFrame{sender: c, data: data}
	}
}

// WritePump pumps frames from the Send queue to the websocket
// connection and keeps the connection alive with periodic pings.
//
// One WritePump goroutine runs per connection, ensuring at most one
// writer per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("websocket write failed", "client", c.ID, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues data for the client without ever blocking the hub. A
// client whose buffer is full loses this frame only; everyone else in
// the room still gets theirs.
func (c *Client) trySend(data []byte) {
	select {
	case c.Send <- data:
	default:
		slog.Warn("send buffer full, dropping frame", "client", c.ID, "room", c.RoomCode)
	}
}
