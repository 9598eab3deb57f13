// Package signaling is the client side of the relay protocol: the
// websocket connection, the routing of inbound frames onto typed
// channels, and the control-channel heartbeat.
package signaling

import (
	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/relay"
)

// Message is the client-side view of a relay frame. Fields are a union
// over all message types; the Type discriminator says which apply.
type Message struct {
	Type      string `json:"type"`
	Room      string `json:"room,omitempty"`
	SessionID string `json:"sessionId,omitempty"`

	// offer / answer
	SDP string `json:"sdp,omitempty"`

	// ice-candidate
	Candidate     string  `json:"candidate,omitempty"`
	SDPMid        *string `json:"sdpMid,omitempty"`
	SDPMLineIndex *uint16 `json:"sdpMLineIndex,omitempty"`

	// error
	Error string `json:"error,omitempty"`
}

// CandidateInit converts an ice-candidate message to pion's form.
func (m *Message) CandidateInit() webrtc.ICECandidateInit {
	return webrtc.ICECandidateInit{
		Candidate:     m.Candidate,
		SDPMid:        m.SDPMid,
		SDPMLineIndex: m.SDPMLineIndex,
	}
}

// SendOffer, SendAnswer and SendCandidate make *Client a
// negotiation.DescriptionSender.

func (c *Client) SendOffer(sdp string) error {
	return c.Send(&Message{Type: relay.TypeOffer, SessionID: c.sessionID, SDP: sdp})
}

func (c *Client) SendAnswer(sdp string) error {
	return c.Send(&Message{Type: relay.TypeAnswer, SessionID: c.sessionID, SDP: sdp})
}

func (c *Client) SendCandidate(init webrtc.ICECandidateInit) error {
	return c.Send(&Message{
		Type:          relay.TypeICECandidate,
		SessionID:     c.sessionID,
		Candidate:     init.Candidate,
		SDPMid:        init.SDPMid,
		SDPMLineIndex: init.SDPMLineIndex,
	})
}
