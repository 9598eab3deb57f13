package relay

import (
	"encoding/json"
	"testing"
	"time"
)

// newTestClient builds a client with a buffered queue and no websocket;
// the hub never touches Conn.
func newTestClient(id string, kind ChannelKind) *Client {
	return &Client{
		ID:   id,
		Kind: kind,
		Send: make(chan []byte, sendBuffer),
	}
}

// recvType drains one frame from the client and returns its type field.
func recvType(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case data := <-c.Send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("client %s received non-JSON frame %q: %v", c.ID, data, err)
		}
		return env.Type
	default:
		t.Fatalf("client %s: no frame queued", c.ID)
		return ""
	}
}

// expectNone asserts the client has nothing queued.
func expectNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("client %s: unexpected frame %q", c.ID, data)
	default:
	}
}

func joinFrame(room string) []byte {
	b, _ := json.Marshal(Envelope{Type: TypeJoin, Room: room})
	return b
}

func TestJoinCreatesRoomAndAcks(t *testing.T) {
	t.Parallel()
	h := NewHub()
	c := newTestClient("a", ChannelSignaling)

	h.dispatch(&inboundFrame{sender: c, data: joinFrame("A7K3M9")})

	if got := recvType(t, c); got != TypeJoined {
		t.Fatalf("ack type: got %s, want %s", got, TypeJoined)
	}
	expectNone(t, c) // alone in the room, no peer-joined
	if _, ok := h.rooms["A7K3M9"]; !ok {
		t.Error("room not created")
	}
	if c.room == nil || c.room.Code != "A7K3M9" {
		t.Error("client not attached to room")
	}
}

func TestSecondJoinerNotifiesBothSides(t *testing.T) {
	t.Parallel()
	h := NewHub()
	first := newTestClient("first", ChannelSignaling)
	second := newTestClient("second", ChannelSignaling)

	h.join(first, "ROOM42")
	recvType(t, first) // joined ack

	h.join(second, "ROOM42")

	if got := recvType(t, second); got != TypeJoined {
		t.Errorf("second ack: got %s, want %s", got, TypeJoined)
	}
	if got := recvType(t, second); got != TypePeerJoined {
		t.Errorf("second notification: got %s, want %s", got, TypePeerJoined)
	}
	if got := recvType(t, first); got != TypePeerJoined {
		t.Errorf("first notification: got %s, want %s", got, TypePeerJoined)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	t.Parallel()
	h := NewHub()
	c := newTestClient("a", ChannelSignaling)

	h.join(c, "ROOM42")
	recvType(t, c)

	h.join(c, "ROOM42")
	expectNone(t, c)
	if len(h.rooms["ROOM42"].members) != 1 {
		t.Errorf("members: got %d, want 1", len(h.rooms["ROOM42"].members))
	}
}

func TestThirdJoinerRejected(t *testing.T) {
	t.Parallel()
	h := NewHub()
	a := newTestClient("a", ChannelSignaling)
	b := newTestClient("b", ChannelSignaling)
	c := newTestClient("c", ChannelSignaling)

	h.join(a, "ROOM42")
	h.join(b, "ROOM42")
	for i := 0; i < 2; i++ {
		<-a.Send
	}
	for i := 0; i < 2; i++ {
		<-b.Send
	}

	h.join(c, "ROOM42")

	if got := recvType(t, c); got != TypeError {
		t.Fatalf("third joiner: got %s, want %s", got, TypeError)
	}
	if c.room != nil {
		t.Error("rejected joiner attached to room")
	}
	// The existing pair is undisturbed.
	expectNone(t, a)
	expectNone(t, b)

	// A rejected relay attempt is dropped, never delivered.
	h.dispatch(&inboundFrame{sender: c, data: []byte(`{"type":"offer","sdp":"x"}`)})
	expectNone(t, a)
	expectNone(t, b)
}

func TestCapacityIsPerChannelKind(t *testing.T) {
	t.Parallel()
	h := NewHub()
	sigA := newTestClient("sig-a", ChannelSignaling)
	sigB := newTestClient("sig-b", ChannelSignaling)
	ctlA := newTestClient("ctl-a", ChannelControl)
	ctlB := newTestClient("ctl-b", ChannelControl)

	h.join(sigA, "ROOM42")
	h.join(sigB, "ROOM42")

	// A full signaling plane does not block the control plane.
	h.join(ctlA, "ROOM42")
	if got := recvType(t, ctlA); got != TypeJoined {
		t.Fatalf("control joiner: got %s, want %s", got, TypeJoined)
	}
	h.join(ctlB, "ROOM42")
	if got := recvType(t, ctlB); got != TypeJoined {
		t.Fatalf("second control joiner: got %s, want %s", got, TypeJoined)
	}

	if n := len(h.rooms["ROOM42"].members); n != 4 {
		t.Errorf("members: got %d, want 4", n)
	}
}

func TestRelayScopedToSameKind(t *testing.T) {
	t.Parallel()
	h := NewHub()
	sigA := newTestClient("sig-a", ChannelSignaling)
	sigB := newTestClient("sig-b", ChannelSignaling)
	ctlA := newTestClient("ctl-a", ChannelControl)

	h.join(sigA, "ROOM42")
	h.join(sigB, "ROOM42")
	h.join(ctlA, "ROOM42")
	drain(sigA, sigB, ctlA)

	frame := []byte(`{"type":"offer","sdp":"v=0 fake"}`)
	h.dispatch(&inboundFrame{sender: sigA, data: frame})

	select {
	case got := <-sigB.Send:
		if string(got) != string(frame) {
			t.Errorf("relayed frame altered: got %q, want %q", got, frame)
		}
	default:
		t.Fatal("same-kind peer received nothing")
	}
	expectNone(t, sigA) // never echoed to sender
	expectNone(t, ctlA) // other plane untouched
}

func TestHeartbeatAnsweredNotRelayed(t *testing.T) {
	t.Parallel()
	h := NewHub()
	a := newTestClient("a", ChannelControl)
	b := newTestClient("b", ChannelControl)

	h.join(a, "ROOM42")
	h.join(b, "ROOM42")
	drain(a, b)

	h.dispatch(&inboundFrame{sender: a, data: []byte(`{"type":"heartbeat"}`)})

	if got := recvType(t, a); got != TypeHeartbeatAck {
		t.Errorf("heartbeat reply: got %s, want %s", got, TypeHeartbeatAck)
	}
	expectNone(t, b)
}

func TestMalformedFrameDroppedConnectionStaysOpen(t *testing.T) {
	t.Parallel()
	h := NewHub()
	a := newTestClient("a", ChannelSignaling)
	b := newTestClient("b", ChannelSignaling)
	h.join(a, "ROOM42")
	h.join(b, "ROOM42")
	drain(a, b)

	h.dispatch(&inboundFrame{sender: a, data: []byte("{not json")})
	h.dispatch(&inboundFrame{sender: a, data: []byte(`{"room":"x"}`)}) // no type
	expectNone(t, b)

	// The sender keeps working afterwards.
	h.dispatch(&inboundFrame{sender: a, data: []byte(`{"type":"answer","sdp":"y"}`)})
	if got := recvType(t, b); got != TypeAnswer {
		t.Errorf("frame after malformed input: got %s, want %s", got, TypeAnswer)
	}
}

func TestRoomlessRelayDropped(t *testing.T) {
	t.Parallel()
	h := NewHub()
	c := newTestClient("loner", ChannelSignaling)

	h.dispatch(&inboundFrame{sender: c, data: []byte(`{"type":"offer","sdp":"x"}`)})
	expectNone(t, c)
}

func TestLeaveNotifiesAndCleansUp(t *testing.T) {
	t.Parallel()
	h := NewHub()
	a := newTestClient("a", ChannelSignaling)
	b := newTestClient("b", ChannelSignaling)
	h.join(a, "ROOM42")
	h.join(b, "ROOM42")
	drain(a, b)

	h.leave(a)
	if got := recvType(t, b); got != TypePeerLeft {
		t.Errorf("remaining peer: got %s, want %s", got, TypePeerLeft)
	}

	h.leave(b)
	if _, ok := h.rooms["ROOM42"]; ok {
		t.Error("empty room not deleted")
	}

	// The code is reusable for a fresh pairing once the room is gone.
	fresh := newTestClient("fresh", ChannelSignaling)
	h.join(fresh, "ROOM42")
	if got := recvType(t, fresh); got != TypeJoined {
		t.Errorf("rejoin after cleanup: got %s, want %s", got, TypeJoined)
	}
}

func TestRunLoop(t *testing.T) {
	t.Parallel()
	h := NewHub()
	go h.Run()

	a := newTestClient("a", ChannelSignaling)
	a.RoomCode = "ROOM42"
	b := newTestClient("b", ChannelSignaling)
	b.RoomCode = "ROOM42"

	h.Register <- a
	awaitType(t, a, TypeJoined)
	h.Register <- b
	awaitType(t, b, TypeJoined)
	awaitType(t, b, TypePeerJoined)
	awaitType(t, a, TypePeerJoined)

	h.Inbound <- &inboundFrame{sender: a, data: []byte(`{"type":"offer","sdp":"x"}`)}
	awaitType(t, b, TypeOffer)

	h.Unregister <- a
	awaitType(t, b, TypePeerLeft)

	// Unregister closes the departing client's queue.
	select {
	case _, ok := <-a.Send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

// awaitType blocks for one frame, for tests running against the Run
// goroutine rather than calling hub methods directly.
func awaitType(t *testing.T, c *Client, want string) {
	t.Helper()
	select {
	case data := <-c.Send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("client %s received non-JSON frame %q: %v", c.ID, data, err)
		}
		if env.Type != want {
			t.Fatalf("client %s: got %s, want %s", c.ID, env.Type, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("client %s: timed out waiting for %s", c.ID, want)
	}
}

func drain(clients ...*Client) {
	for _, c := range clients {
		for len(c.Send) > 0 {
			<-c.Send
		}
	}
}
