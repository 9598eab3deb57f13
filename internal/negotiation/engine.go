// Package negotiation drives the role-aware offer/answer/candidate
// exchange that turns relayed signaling messages into an established
// peer connection. The exchange is an explicit state machine with one
// transition function; completion and failure surface on channels so
// callers select instead of nesting callbacks.
package negotiation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/session"
)

// State names the negotiation phases.
type State string

const (
	// StateNew: no description exchanged yet. A failed description
	// exchange returns here; there is no automatic retry.
	StateNew State = "new"

	// StateOfferSent: initiator only — local description set and the
	// offer is on its way; waiting for the answer.
	StateOfferSent State = "offer-sent"

	// StateStable: both descriptions applied; candidate exchange and
	// transport establishment continue underneath.
	StateStable State = "stable"
)

var (
	// ErrRemoteBeforeLocal: a remote description arrived before any
	// local one exists. Rejected without tearing down existing state.
	ErrRemoteBeforeLocal = errors.New("remote description before local description")

	// ErrUnexpectedDescription: a description that does not fit the
	// current phase (duplicate answer, offer to an initiator, ...).
	ErrUnexpectedDescription = errors.New("unexpected description for negotiation state")
)

// PeerConnection is the subset of *webrtc.PeerConnection the engine
// drives. Tests substitute a fake to pin down interleavings.
type PeerConnection interface {
	CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error)
	CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	SetRemoteDescription(webrtc.SessionDescription) error
	AddICECandidate(webrtc.ICECandidateInit) error
	Close() error
}

// DescriptionSender carries the engine's outbound signaling. The
// websocket signaling client implements it.
type DescriptionSender interface {
	SendOffer(sdp string) error
	SendAnswer(sdp string) error
	SendCandidate(c webrtc.ICECandidateInit) error
}

// eventKind enumerates what can drive a transition.
type eventKind int

const (
	evStartOffer eventKind = iota
	evRemoteOffer
	evRemoteAnswer
)

type event struct {
	kind eventKind
	sdp  string
}

// Engine is one endpoint's negotiation driver. All mutation is
// serialized by its mutex; observers consume the Connected/Failed
// channels.
type Engine struct {
	mu     sync.Mutex
	role   session.Role
	pc     PeerConnection
	signal DescriptionSender

	state     State
	remoteSet bool

	// pending buffers candidates that arrived before the remote
	// description; they are flushed, never dropped, once it is set.
	pending []webrtc.ICECandidateInit

	connState ConnectionState

	connected     chan struct{}
	connectedOnce sync.Once
	failed        chan error
	closed        bool
}

// NewEngine creates an engine for the given role over pc, sending
// outbound signaling through signal.
func NewEngine(role session.Role, pc PeerConnection, signal DescriptionSender) *Engine {
	return &Engine{
		role:      role,
		pc:        pc,
		signal:    signal,
		state:     StateNew,
		connState: ConnNew,
		connected: make(chan struct{}),
		failed:    make(chan error, 1),
	}
}

// State returns the current negotiation phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ConnectionState returns the derived transport health summary.
func (e *Engine) ConnectionState() ConnectionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connState
}

// Connected is closed exactly once, when the transport first reaches
// CONNECTED. This is the single trigger that opens the execution gate.
func (e *Engine) Connected() <-chan struct{} { return e.connected }

// Failed delivers the first transport or negotiation failure.
func (e *Engine) Failed() <-chan error { return e.failed }

// StartOffer begins the description exchange. Initiator only; called
// once the relay reports a peer in the room.
func (e *Engine) StartOffer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(event{kind: evStartOffer})
}

// HandleOffer applies a relayed offer. Responder only.
func (e *Engine) HandleOffer(sdp string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(event{kind: evRemoteOffer, sdp: sdp})
}

// HandleAnswer applies a relayed answer. Initiator only.
func (e *Engine) HandleAnswer(sdp string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(event{kind: evRemoteAnswer, sdp: sdp})
}

// step is the one transition function. Callers hold e.mu. A
// description-exchange error leaves the state unchanged (New stays New)
// and never tears down what already exists.
func (e *Engine) step(ev event) error {
	switch e.state {
	case StateNew:
		switch ev.kind {
		case evStartOffer:
			if e.role != session.RoleInitiator {
				return fmt.Errorf("%w: responder cannot offer", ErrUnexpectedDescription)
			}
			offer, err := e.pc.CreateOffer(nil)
			if err != nil {
				return fmt.Errorf("create offer: %w", err)
			}
			if err := e.pc.SetLocalDescription(offer); err != nil {
				return fmt.Errorf("set local offer: %w", err)
			}
			if err := e.signal.SendOffer(offer.SDP); err != nil {
				return fmt.Errorf("send offer: %w", err)
			}
			e.state = StateOfferSent
			return nil

		case evRemoteOffer:
			if e.role != session.RoleResponder {
				return fmt.Errorf("%w: initiator received offer", ErrUnexpectedDescription)
			}
			remote := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: ev.sdp}
			if err := e.pc.SetRemoteDescription(remote); err != nil {
				return fmt.Errorf("set remote offer: %w", err)
			}
			e.setRemoteApplied()
			answer, err := e.pc.CreateAnswer(nil)
			if err != nil {
				return fmt.Errorf("create answer: %w", err)
			}
			if err := e.pc.SetLocalDescription(answer); err != nil {
				return fmt.Errorf("set local answer: %w", err)
			}
			if err := e.signal.SendAnswer(answer.SDP); err != nil {
				return fmt.Errorf("send answer: %w", err)
			}
			e.state = StateStable
			return nil

		case evRemoteAnswer:
			// No local description exists yet: invalid, but not fatal.
			return ErrRemoteBeforeLocal
		}

	case StateOfferSent:
		switch ev.kind {
		case evRemoteAnswer:
			remote := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: ev.sdp}
			if err := e.pc.SetRemoteDescription(remote); err != nil {
				return fmt.Errorf("set remote answer: %w", err)
			}
			e.setRemoteApplied()
			e.state = StateStable
			return nil
		default:
			return ErrUnexpectedDescription
		}

	case StateStable:
		return ErrUnexpectedDescription
	}

	return fmt.Errorf("unhandled negotiation event %d in state %s", ev.kind, e.state)
}

// setRemoteApplied marks the remote description as set and flushes the
// candidate buffer. Callers hold e.mu.
func (e *Engine) setRemoteApplied() {
	e.remoteSet = true
	for _, c := range e.pending {
		if err := e.pc.AddICECandidate(c); err != nil {
			slog.Warn("buffered candidate rejected", "err", err)
		}
	}
	e.pending = nil
}

// HandleCandidate applies a relayed remote candidate, buffering it if
// the remote description has not been applied yet. Candidate exchange
// is unordered with respect to the description exchange.
func (e *Engine) HandleCandidate(c webrtc.ICECandidateInit) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.remoteSet {
		e.pending = append(e.pending, c)
		return nil
	}
	if err := e.pc.AddICECandidate(c); err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

// HandleLocalCandidate forwards a locally gathered candidate to the
// peer. Wired to pion's OnICECandidate; a nil candidate marks the end
// of gathering and is ignored.
func (e *Engine) HandleLocalCandidate(c *webrtc.ICECandidate) {
	if c == nil {
		return
	}
	if err := e.signal.SendCandidate(c.ToJSON()); err != nil {
		slog.Warn("failed to send candidate", "err", err)
	}
}

// HandleConnectionChange ingests transport state from pion. Reaching
// CONNECTED closes the Connected channel exactly once; failure states
// surface on Failed.
func (e *Engine) HandleConnectionChange(s webrtc.PeerConnectionState) {
	e.mu.Lock()
	cs := FromPeerState(s)
	e.connState = cs
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return
	}

	switch cs {
	case ConnConnected:
		e.connectedOnce.Do(func() { close(e.connected) })
	case ConnFailed, ConnDisconnected, ConnClosed:
		select {
		case e.failed <- fmt.Errorf("transport %s", cs):
		default:
		}
	}
}

// Close cancels the negotiation: buffered candidates are discarded,
// never applied, and the underlying peer connection is closed.
func (e *Engine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.pending = nil
	e.mu.Unlock()
	return e.pc.Close()
}
