package relay

// Room groups the connections sharing a pairing code. A room exists
// exactly as long as it has at least one member; the hub creates it on
// first join and deletes it when the last member leaves.
type Room struct {
	// Code is the normalized pairing code identifying the room.
	Code string

	// members holds every live connection joined under this code,
	// across both channel kinds.
	members map[*Client]struct{}
}

func newRoom(code string) *Room {
	return &Room{
		Code:    code,
		members: make(map[*Client]struct{}),
	}
}

// countKind returns how many members of the given channel kind are in
// the room. Capacity is enforced per kind: two endpoints, each with at
// most one signaling and one control connection.
func (r *Room) countKind(kind ChannelKind) int {
	n := 0
	for c := range r.members {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// othersSameKind returns every member sharing the sender's channel
// kind, excluding the sender itself. These are the relay targets for a
// forwarded frame.
func (r *Room) othersSameKind(sender *Client) []*Client {
	var peers []*Client
	for c := range r.members {
		if c != sender && c.Kind == sender.Kind {
			peers = append(peers, c)
		}
	}
	return peers
}
