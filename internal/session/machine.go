package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Change describes one observed transition.
type Change struct {
	From   Status
	To     Status
	At     time.Time
	Reason string
}

// Machine is the session state machine. All mutation goes through its
// mutex (single writer); everyone else observes through Subscribe and
// must never be able to block a transition — observer delivery is
// non-blocking on buffered channels.
type Machine struct {
	mu        sync.Mutex
	sess      Session
	log       *ActivityLog
	observers []chan Change
}

// NewMachine creates a session in WAITING_FOR_CONNECTION for the given
// pairing code and role.
func NewMachine(pairingCode string, role Role, log *ActivityLog) *Machine {
	m := &Machine{
		sess: Session{
			ID:          uuid.New().String(),
			PairingCode: pairingCode,
			Status:      StatusWaiting,
			Role:        role,
			CreatedAt:   time.Now(),
		},
		log: log,
	}
	log.Append(EntrySession, fmt.Sprintf("session created (%s, code %s)", role, pairingCode))
	return m
}

// Snapshot returns a copy of the current session.
func (m *Machine) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess
}

// Status returns the current status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Status
}

// Subscribe registers a read-only observer. Changes are delivered
// fire-and-forget: a full buffer loses that notification rather than
// blocking the transition.
func (m *Machine) Subscribe(buffer int) <-chan Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Change, buffer)
	m.observers = append(m.observers, ch)
	return ch
}

// PeerConnected moves WAITING_FOR_CONNECTION to CONNECTED, recording
// the partner and connect time. Any other starting state is an error:
// negotiation completing twice, or after teardown, is a protocol bug.
func (m *Machine) PeerConnected(partnerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Status != StatusWaiting {
		return fmt.Errorf("peer connected in status %q", m.sess.Status)
	}

	now := time.Now()
	m.sess.PartnerID = partnerID
	m.sess.ConnectedAt = &now
	m.transition(StatusConnected, "peer connected: "+partnerID)
	return nil
}

// Pause suspends control. A no-op unless currently CONNECTED.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Status == StatusConnected {
		m.transition(StatusPaused, "paused by user")
	}
}

// Resume re-enables control. A no-op unless currently PAUSED.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Status == StatusPaused {
		m.transition(StatusConnected, "resumed by user")
	}
}

// End terminates the session from any non-terminal state.
func (m *Machine) End() {
	m.end("ended by user")
}

// EmergencyStop terminates the session immediately. It is purely local
// state manipulation and therefore always succeeds, even with the
// transport already broken.
func (m *Machine) EmergencyStop() {
	m.end("emergency stop")
}

func (m *Machine) end(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Status.Terminal() {
		return
	}
	now := time.Now()
	m.sess.EndedAt = &now
	m.transition(StatusEnded, reason)
}

// Fail moves any non-terminal state to ERROR. Transport and negotiation
// failures land here; there is no automatic retry out of it.
func (m *Machine) Fail(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Status.Terminal() {
		return
	}
	now := time.Now()
	m.sess.EndedAt = &now
	m.transition(StatusError, reason)
}

// WhileConnected runs fn under the status lock iff the session is
// CONNECTED, and reports whether fn ran. The check and fn are
// inseparable: no transition can slip between a positive check and fn,
// so a command authorized against an open gate can never be dispatched
// after the gate has closed.
func (m *Machine) WhileConnected(fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.Status != StatusConnected {
		return false
	}
	fn()
	return true
}

// transition records and announces a status change. Callers hold m.mu.
func (m *Machine) transition(to Status, reason string) {
	change := Change{From: m.sess.Status, To: to, At: time.Now(), Reason: reason}
	m.sess.Status = to

	m.log.Append(EntrySession, fmt.Sprintf("%s -> %s (%s)", change.From, change.To, reason))
	slog.Info("session transition", "session", m.sess.ID, "from", change.From, "to", change.To, "reason", reason)

	for _, ch := range m.observers {
		select {
		case ch <- change:
		default:
		}
	}
}
