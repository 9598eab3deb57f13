package relay

import "encoding/json"

// Message type constants shared by the relay and its clients. Every
// websocket frame is a JSON object carrying a "type" discriminator.
const (
	TypeJoin         = "join"
	TypeJoined       = "joined"
	TypePeerJoined   = "peer-joined"
	TypePeerLeft     = "peer-left"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypeHeartbeat    = "heartbeat"
	TypeHeartbeatAck = "heartbeat-ack"
	TypeGesture      = "gesture"
	TypeError        = "error"
)

// ChannelKind distinguishes the two websocket planes an endpoint opens
// into a room: one for negotiation traffic, one for gesture/control
// traffic and heartbeats.
type ChannelKind string

const (
	ChannelSignaling ChannelKind = "signaling"
	ChannelControl   ChannelKind = "control"
)

// ParseChannelKind maps the `channel` query parameter onto a kind,
// defaulting to signaling for an absent value.
func ParseChannelKind(s string) (ChannelKind, bool) {
	switch s {
	case "", string(ChannelSignaling):
		return ChannelSignaling, true
	case string(ChannelControl):
		return ChannelControl, true
	}
	return "", false
}

// Envelope is the subset of a frame the hub itself inspects. Everything
// else is opaque: relayed frames are forwarded verbatim as raw bytes.
type Envelope struct {
	Type      string `json:"type"`
	Room      string `json:"room,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// ErrorMessage is the body of a server-originated error frame.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func marshalError(msg string) []byte {
	b, _ := json.Marshal(ErrorMessage{Type: TypeError, Error: msg})
	return b
}

func marshalType(t string) []byte {
	b, _ := json.Marshal(Envelope{Type: t})
	return b
}

func marshalJoined(room string) []byte {
	b, _ := json.Marshal(Envelope{Type: TypeJoined, Room: room})
	return b
}
