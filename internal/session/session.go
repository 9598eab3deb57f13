// Package session owns the client-side session lifecycle: the state
// machine that is the single source of truth for whether remote control
// is currently authorized, and the append-only activity log that makes
// every transition and every control decision auditable.
package session

import "time"

// Status is the lifecycle state of a session.
type Status string

const (
	StatusWaiting   Status = "waiting_for_connection"
	StatusConnected Status = "connected"
	StatusPaused    Status = "paused"
	StatusEnded     Status = "ended"
	StatusError     Status = "error"
)

// Terminal reports whether no transition leaves this status. A terminal
// session is never reused; retrying requires a fresh session.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusError
}

// Role says which side of the handshake this endpoint plays. The
// initiator creates the offer once a peer joins; the responder answers.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)

// Session is the local endpoint's view of one pairing. It is owned
// exclusively by its endpoint and never shared across processes.
type Session struct {
	ID          string
	PairingCode string
	Status      Status
	Role        Role
	PartnerID   string
	CreatedAt   time.Time
	ConnectedAt *time.Time
	EndedAt     *time.Time
}
