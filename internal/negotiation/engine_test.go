package negotiation

import (
	"errors"
	"testing"

	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/session"
)

// fakePC scripts the peer connection surface the engine drives.
type fakePC struct {
	local      []webrtc.SessionDescription
	remote     []webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	closed     bool

	createOfferErr  error
	createAnswerErr error
	setRemoteErr    error
}

func (f *fakePC) CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error) {
	if f.createOfferErr != nil {
		return webrtc.SessionDescription{}, f.createOfferErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "local-offer"}, nil
}

func (f *fakePC) CreateAnswer(*webrtc.AnswerOptions) (webrtc.SessionDescription, error) {
	if f.createAnswerErr != nil {
		return webrtc.SessionDescription{}, f.createAnswerErr
	}
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "local-answer"}, nil
}

func (f *fakePC) SetLocalDescription(d webrtc.SessionDescription) error {
	f.local = append(f.local, d)
	return nil
}

func (f *fakePC) SetRemoteDescription(d webrtc.SessionDescription) error {
	if f.setRemoteErr != nil {
		return f.setRemoteErr
	}
	f.remote = append(f.remote, d)
	return nil
}

func (f *fakePC) AddICECandidate(c webrtc.ICECandidateInit) error {
	f.candidates = append(f.candidates, c)
	return nil
}

func (f *fakePC) Close() error {
	f.closed = true
	return nil
}

// fakeSender records outbound signaling.
type fakeSender struct {
	offers     []string
	answers    []string
	candidates []webrtc.ICECandidateInit
	sendErr    error
}

func (f *fakeSender) SendOffer(sdp string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.offers = append(f.offers, sdp)
	return nil
}

func (f *fakeSender) SendAnswer(sdp string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.answers = append(f.answers, sdp)
	return nil
}

func (f *fakeSender) SendCandidate(c webrtc.ICECandidateInit) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.candidates = append(f.candidates, c)
	return nil
}

func TestInitiatorExchange(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	sig := &fakeSender{}
	e := NewEngine(session.RoleInitiator, pc, sig)

	if err := e.StartOffer(); err != nil {
		t.Fatalf("StartOffer: %v", err)
	}
	if e.State() != StateOfferSent {
		t.Fatalf("state: got %s, want %s", e.State(), StateOfferSent)
	}
	// Local description is applied before the offer leaves: trickled
	// candidates may start flowing the moment the peer sees it.
	if len(pc.local) != 1 || pc.local[0].SDP != "local-offer" {
		t.Errorf("local descriptions: %v", pc.local)
	}
	if len(sig.offers) != 1 || sig.offers[0] != "local-offer" {
		t.Errorf("sent offers: %v", sig.offers)
	}

	if err := e.HandleAnswer("remote-answer"); err != nil {
		t.Fatalf("HandleAnswer: %v", err)
	}
	if e.State() != StateStable {
		t.Errorf("state: got %s, want %s", e.State(), StateStable)
	}
	if len(pc.remote) != 1 || pc.remote[0].SDP != "remote-answer" || pc.remote[0].Type != webrtc.SDPTypeAnswer {
		t.Errorf("remote descriptions: %v", pc.remote)
	}
}

func TestResponderExchange(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	sig := &fakeSender{}
	e := NewEngine(session.RoleResponder, pc, sig)

	if err := e.HandleOffer("remote-offer"); err != nil {
		t.Fatalf("HandleOffer: %v", err)
	}
	if e.State() != StateStable {
		t.Errorf("state: got %s, want %s", e.State(), StateStable)
	}
	if len(pc.remote) != 1 || pc.remote[0].Type != webrtc.SDPTypeOffer {
		t.Errorf("remote descriptions: %v", pc.remote)
	}
	if len(pc.local) != 1 || pc.local[0].SDP != "local-answer" {
		t.Errorf("local descriptions: %v", pc.local)
	}
	if len(sig.answers) != 1 || sig.answers[0] != "local-answer" {
		t.Errorf("sent answers: %v", sig.answers)
	}
}

func TestAnswerBeforeLocalRejected(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	e := NewEngine(session.RoleInitiator, pc, &fakeSender{})

	err := e.HandleAnswer("early-answer")
	if !errors.Is(err, ErrRemoteBeforeLocal) {
		t.Fatalf("err: got %v, want ErrRemoteBeforeLocal", err)
	}
	// Rejection is not teardown.
	if e.State() != StateNew {
		t.Errorf("state after rejection: got %s, want %s", e.State(), StateNew)
	}
	if len(pc.remote) != 0 {
		t.Errorf("rejected answer applied: %v", pc.remote)
	}
}

func TestRoleMismatchRejected(t *testing.T) {
	t.Parallel()
	init := NewEngine(session.RoleInitiator, &fakePC{}, &fakeSender{})
	if err := init.HandleOffer("x"); !errors.Is(err, ErrUnexpectedDescription) {
		t.Errorf("initiator offer: got %v, want ErrUnexpectedDescription", err)
	}

	resp := NewEngine(session.RoleResponder, &fakePC{}, &fakeSender{})
	if err := resp.StartOffer(); !errors.Is(err, ErrUnexpectedDescription) {
		t.Errorf("responder StartOffer: got %v, want ErrUnexpectedDescription", err)
	}
}

func TestDuplicateAnswerRejected(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	e := NewEngine(session.RoleInitiator, pc, &fakeSender{})
	e.StartOffer()
	e.HandleAnswer("a1")

	if err := e.HandleAnswer("a2"); !errors.Is(err, ErrUnexpectedDescription) {
		t.Fatalf("duplicate answer: got %v, want ErrUnexpectedDescription", err)
	}
	if len(pc.remote) != 1 {
		t.Errorf("remote descriptions: got %d, want 1", len(pc.remote))
	}
}

func TestCandidatesBufferedUntilRemoteSet(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	e := NewEngine(session.RoleInitiator, pc, &fakeSender{})
	e.StartOffer()

	early := []webrtc.ICECandidateInit{
		{Candidate: "candidate-1"},
		{Candidate: "candidate-2"},
	}
	for _, c := range early {
		if err := e.HandleCandidate(c); err != nil {
			t.Fatalf("HandleCandidate: %v", err)
		}
	}
	if len(pc.candidates) != 0 {
		t.Fatalf("candidates applied before remote description: %v", pc.candidates)
	}

	e.HandleAnswer("remote-answer")

	if len(pc.candidates) != 2 {
		t.Fatalf("flushed candidates: got %d, want 2", len(pc.candidates))
	}
	for i, c := range early {
		if pc.candidates[i].Candidate != c.Candidate {
			t.Errorf("flush order: position %d got %q, want %q", i, pc.candidates[i].Candidate, c.Candidate)
		}
	}

	// Late candidates apply straight through.
	e.HandleCandidate(webrtc.ICECandidateInit{Candidate: "candidate-3"})
	if len(pc.candidates) != 3 {
		t.Errorf("late candidate not applied: %v", pc.candidates)
	}
}

func TestOfferFailureLeavesStateNew(t *testing.T) {
	t.Parallel()
	pc := &fakePC{createOfferErr: errors.New("no codecs")}
	e := NewEngine(session.RoleInitiator, pc, &fakeSender{})

	if err := e.StartOffer(); err == nil {
		t.Fatal("StartOffer should surface the failure")
	}
	if e.State() != StateNew {
		t.Errorf("state: got %s, want %s", e.State(), StateNew)
	}
}

func TestLocalCandidateForwarding(t *testing.T) {
	t.Parallel()
	sig := &fakeSender{}
	e := NewEngine(session.RoleInitiator, &fakePC{}, sig)

	// End-of-gathering marker is silently ignored.
	e.HandleLocalCandidate(nil)
	if len(sig.candidates) != 0 {
		t.Errorf("nil candidate forwarded: %v", sig.candidates)
	}
}

func TestConnectedClosedExactlyOnce(t *testing.T) {
	t.Parallel()
	e := NewEngine(session.RoleInitiator, &fakePC{}, &fakeSender{})

	e.HandleConnectionChange(webrtc.PeerConnectionStateConnected)
	e.HandleConnectionChange(webrtc.PeerConnectionStateConnected)

	select {
	case <-e.Connected():
	default:
		t.Fatal("Connected channel not closed")
	}
	if e.ConnectionState() != ConnConnected {
		t.Errorf("connection state: got %s", e.ConnectionState())
	}
}

func TestFailureSurfaces(t *testing.T) {
	t.Parallel()
	e := NewEngine(session.RoleInitiator, &fakePC{}, &fakeSender{})

	e.HandleConnectionChange(webrtc.PeerConnectionStateFailed)

	select {
	case err := <-e.Failed():
		if err == nil {
			t.Fatal("nil failure")
		}
	default:
		t.Fatal("no failure delivered")
	}
}

func TestCloseDiscardsPendingCandidates(t *testing.T) {
	t.Parallel()
	pc := &fakePC{}
	e := NewEngine(session.RoleResponder, pc, &fakeSender{})

	e.HandleCandidate(webrtc.ICECandidateInit{Candidate: "stale"})
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pc.closed {
		t.Error("peer connection not closed")
	}
	if len(pc.candidates) != 0 {
		t.Errorf("candidates applied after close: %v", pc.candidates)
	}

	// Late transport noise after close changes nothing.
	e.HandleConnectionChange(webrtc.PeerConnectionStateFailed)
	select {
	case err := <-e.Failed():
		t.Errorf("failure after close: %v", err)
	default:
	}
}
