package cli

import (
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/config"
	"github.com/adityakqumar/RemoteScreen/internal/negotiation"
	"github.com/adityakqumar/RemoteScreen/internal/session"
	"github.com/adityakqumar/RemoteScreen/internal/signaling"
	"github.com/adityakqumar/RemoteScreen/internal/ui"
)

// Endpoint bundles everything one side of a session owns: both relay
// connections, the negotiation engine, and the session state machine.
// It is an explicit context object — nothing here lives in package
// globals, so two sessions in one process stay fully isolated.
type Endpoint struct {
	Config  *config.Config
	Machine *session.Machine
	Log     *session.ActivityLog

	Signaling  *signaling.Client
	SigHandler *signaling.Handler
	Control    *signaling.Client
	CtlHandler *signaling.Handler

	PC     *webrtc.PeerConnection
	Engine *negotiation.Engine

	done      chan struct{}
	closeOnce sync.Once
}

// NewEndpoint opens the signaling and control connections for the given
// code and prepares the peer connection and engine for the role.
func NewEndpoint(cfg *config.Config, code string, role session.Role) (*Endpoint, error) {
	log := session.NewActivityLog()
	machine := session.NewMachine(code, role, log)
	sessionID := machine.Snapshot().ID

	sigClient := signaling.NewClient(cfg.SignalingURL(code), sessionID)
	if err := sigClient.Connect(); err != nil {
		return nil, fmt.Errorf("connect signaling channel: %w", err)
	}

	ctlClient := signaling.NewClient(cfg.ControlURL(code), sessionID)
	if err := ctlClient.Connect(); err != nil {
		sigClient.Close()
		return nil, fmt.Errorf("connect control channel: %w", err)
	}

	pc, err := negotiation.NewPeerConnection(cfg)
	if err != nil {
		sigClient.Close()
		ctlClient.Close()
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	engine := negotiation.NewEngine(role, pc, sigClient)
	negotiation.Attach(engine, pc)

	sigHandler := signaling.NewHandler(sigClient.Incoming())
	ctlHandler := signaling.NewHandler(ctlClient.Incoming())
	go sigHandler.Start()
	go ctlHandler.Start()

	return &Endpoint{
		Config:     cfg,
		Machine:    machine,
		Log:        log,
		Signaling:  sigClient,
		SigHandler: sigHandler,
		Control:    ctlClient,
		CtlHandler: ctlHandler,
		PC:         pc,
		Engine:     engine,
		done:       make(chan struct{}),
	}, nil
}

// Done is closed when the endpoint shuts down.
func (e *Endpoint) Done() <-chan struct{} { return e.done }

// Close tears down the endpoint: negotiation first (discarding any
// buffered candidates), then both relay connections. Safe to call more
// than once, and never dependent on the network being healthy.
func (e *Endpoint) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.Engine.Close()
		e.Signaling.Close()
		e.Control.Close()
	})
}

// runSignalLoop feeds relayed answers/offers/candidates into the
// engine until the endpoint closes. Description errors are logged and
// non-fatal: the engine stays where it is and a manual restart is the
// only retry.
func (e *Endpoint) runSignalLoop() {
	for {
		select {
		case sdp := <-e.SigHandler.Offer:
			if err := e.Engine.HandleOffer(sdp); err != nil {
				ui.PrintErrorf("offer rejected: %v", err)
			}

		case sdp := <-e.SigHandler.Answer:
			if err := e.Engine.HandleAnswer(sdp); err != nil {
				ui.PrintErrorf("answer rejected: %v", err)
			}

		case c := <-e.SigHandler.Candidate:
			if err := e.Engine.HandleCandidate(c); err != nil {
				ui.PrintErrorf("candidate rejected: %v", err)
			}

		case <-e.SigHandler.PeerLeft:
			e.Machine.Fail("peer left")

		case errMsg := <-e.SigHandler.Error:
			e.Machine.Fail("relay error: " + errMsg)

		case <-e.SigHandler.Closed:
			e.Machine.Fail("signaling connection lost")
			return

		case <-e.done:
			return
		}
	}
}

// startHeartbeat runs the control-plane heartbeat; a dead control
// connection fails the session.
func (e *Endpoint) startHeartbeat() {
	sessionID := e.Machine.Snapshot().ID
	go signaling.RunHeartbeat(e.Control, e.CtlHandler.HeartbeatAck, sessionID, e.Config.HeartbeatInterval, e.done, func() {
		e.Machine.Fail("control heartbeat lost")
	})
}

// loadConfig applies the shared CLI flags.
func loadConfig() (*config.Config, error) {
	return config.Load(config.Options{
		Domain:     flagDomain,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		Insecure:   flagInsecure,
	})
}

// printClosing renders the final session summary and audit trail.
func (e *Endpoint) printClosing() {
	fmt.Println()
	ui.RenderSessionSummary(e.Machine.Snapshot())
	fmt.Println()
	ui.RenderActivityTable(e.Log.Entries())
}
