package signaling

import (
	"log/slog"
	"time"

	"github.com/adityakqumar/RemoteScreen/internal/relay"
)

// maxMissedAcks is how many consecutive unanswered heartbeats the
// control connection tolerates before it is declared dead.
const maxMissedAcks = 3

// RunHeartbeat sends {type:"heartbeat"} on the control connection at a
// fixed interval and watches for acks on the handler's channel. After
// maxMissedAcks consecutive misses it calls onDead once and returns.
// It runs on its own ticker so gesture traffic can never delay it, and
// stops when done is closed.
func RunHeartbeat(c *Client, acks <-chan struct{}, sessionID string, interval time.Duration, done <-chan struct{}, onDead func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	missed := 0
	for {
		select {
		case <-done:
			return

		case <-acks:
			missed = 0

		case <-ticker.C:
			if missed >= maxMissedAcks {
				slog.Warn("heartbeat acks missing, closing control connection", "missed", missed)
				onDead()
				return
			}
			if err := c.Send(&Message{Type: relay.TypeHeartbeat, SessionID: sessionID}); err != nil {
				onDead()
				return
			}
			missed++
		}
	}
}
