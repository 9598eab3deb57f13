package signaling

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client manages one websocket connection to the relay server. An
// endpoint opens two: a signaling-plane connection for negotiation and
// a control-plane connection for gestures and heartbeats.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	sessionID string
	incoming  chan []byte
	outgoing  chan []byte
	done      chan struct{}
	closed    bool
}

// NewClient creates a client for the given websocket URL (pairing code
// and channel kind ride along as query parameters). The session id is
// stamped on outbound descriptions so the peer can identify us.
func NewClient(serverURL, sessionID string) *Client {
	return &Client{
		serverURL: serverURL,
		sessionID: sessionID,
		incoming:  make(chan []byte, 32),
		outgoing:  make(chan []byte, 32),
		done:      make(chan struct{}),
	}
}

// Connect establishes the websocket connection to the relay.
func (c *Client) Connect() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.serverURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.readPump()
	go c.writePump()

	return nil
}

// readPump reads raw frames from the websocket into the incoming
// channel. It closes the channel when the connection dies, which is how
// consumers learn about transport failure.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		c.incoming <- data
	}
}

// writePump writes queued frames and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Send marshals and queues a message for the relay.
func (c *Client) Send(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return c.SendRaw(data)
}

// SendRaw queues an already-encoded frame (gesture frames arrive here
// pre-encoded by their codec).
func (c *Client) SendRaw(data []byte) error {
	select {
	case c.outgoing <- data:
		return nil
	case <-c.done:
		return fmt.Errorf("connection closed")
	}
}

// Incoming returns the channel of raw inbound frames. Closed when the
// connection drops.
func (c *Client) Incoming() <-chan []byte {
	return c.incoming
}

// Close closes the websocket connection and stops the pumps.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
}
