package signaling

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/relay"
)

// Handler routes inbound relay frames onto typed channels so callers
// can select on exactly the events they care about.
type Handler struct {
	incoming <-chan []byte

	mu              sync.Mutex
	remoteSessionID string

	Joined       chan string
	PeerJoined   chan struct{}
	PeerLeft     chan struct{}
	Offer        chan string
	Answer       chan string
	Candidate    chan webrtc.ICECandidateInit
	Gesture      chan []byte
	HeartbeatAck chan struct{}
	Error        chan string

	// Closed is closed when the underlying connection drops.
	Closed chan struct{}
}

// NewHandler creates a handler reading from the given frame stream
// (normally client.Incoming(); tests feed their own channel).
func NewHandler(incoming <-chan []byte) *Handler {
	return &Handler{
		incoming:     incoming,
		Joined:       make(chan string, 1),
		PeerJoined:   make(chan struct{}, 1),
		PeerLeft:     make(chan struct{}, 1),
		Offer:        make(chan string, 1),
		Answer:       make(chan string, 1),
		Candidate:    make(chan webrtc.ICECandidateInit, 32),
		Gesture:      make(chan []byte, 32),
		HeartbeatAck: make(chan struct{}, 1),
		Error:        make(chan string, 1),
		Closed:       make(chan struct{}),
	}
}

// Start consumes frames until the stream closes. Run it in its own
// goroutine. Malformed frames are dropped and logged; the loop never
// stops, or blocks, for them.
func (h *Handler) Start() {
	defer close(h.Closed)

	for data := range h.incoming {
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			slog.Warn("dropping malformed frame", "err", err)
			continue
		}

		switch msg.Type {

		case relay.TypeJoined:
			deliver(h.Joined, msg.Room, msg.Type)

		case relay.TypePeerJoined:
			h.notify(h.PeerJoined)

		case relay.TypePeerLeft:
			h.notify(h.PeerLeft)

		case relay.TypeOffer:
			h.recordRemote(msg.SessionID)
			deliver(h.Offer, msg.SDP, msg.Type)

		case relay.TypeAnswer:
			h.recordRemote(msg.SessionID)
			deliver(h.Answer, msg.SDP, msg.Type)

		case relay.TypeICECandidate:
			deliver(h.Candidate, msg.CandidateInit(), msg.Type)

		case relay.TypeGesture:
			// Raw bytes: the gesture codec owns this format.
			deliver(h.Gesture, data, msg.Type)

		case relay.TypeHeartbeatAck:
			h.notify(h.HeartbeatAck)

		case relay.TypeError:
			deliver(h.Error, msg.Error, msg.Type)

		default:
			slog.Debug("ignoring unknown frame type", "type", msg.Type)
		}
	}
}

// RemoteSessionID returns the peer's session id as observed on its
// descriptions, or "" before any description has arrived.
func (h *Handler) RemoteSessionID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.remoteSessionID
}

func (h *Handler) recordRemote(id string) {
	if id == "" {
		return
	}
	h.mu.Lock()
	h.remoteSessionID = id
	h.mu.Unlock()
}

// deliver queues v without ever blocking the read loop. A full channel
// loses that frame with a log line: the same drop-and-log treatment the
// relay applies to slow writers, so a frame type nobody consumes can
// never wedge routing for the frame types somebody does.
func deliver[T any](ch chan T, v T, frameType string) {
	select {
	case ch <- v:
	default:
		slog.Warn("dropping frame, consumer not keeping up", "type", frameType)
	}
}

// notify delivers an edge-triggered event without ever blocking the
// read loop. Coalescing repeats is the point, so no log line here.
func (h *Handler) notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
