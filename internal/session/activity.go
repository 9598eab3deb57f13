package session

import (
	"sync"
	"time"
)

// Entry kinds recorded in the activity log.
const (
	EntrySession        = "session"
	EntryGestureAllowed = "gesture-allowed"
	EntryGestureDenied  = "gesture-denied"
	EntryGestureInvalid = "gesture-invalid"
)

// Entry is one immutable, timestamped line in the activity log.
type Entry struct {
	At     time.Time
	Kind   string
	Detail string
}

// ActivityLog is the append-only record behind the user-facing
// transparency view. Entries are never dropped or reordered; reads get
// a copy.
type ActivityLog struct {
	mu      sync.Mutex
	entries []Entry
}

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

// Append records an entry stamped with the current time.
func (l *ActivityLog) Append(kind, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{At: time.Now(), Kind: kind, Detail: detail})
}

// Entries returns a snapshot copy in append order.
func (l *ActivityLog) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
