package cli

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/spf13/cobra"

	"github.com/adityakqumar/RemoteScreen/internal/gesture"
	"github.com/adityakqumar/RemoteScreen/internal/negotiation"
	"github.com/adityakqumar/RemoteScreen/internal/pairing"
	"github.com/adityakqumar/RemoteScreen/internal/session"
	"github.com/adityakqumar/RemoteScreen/internal/ui"
)

var hostCmd = &cobra.Command{
	Use:     "host",
	Aliases: []string{"h"},
	Short:   "Host a session and accept remote control",
	Long: `Host a remote control session. A one-time pairing code is generated
for the controller to join with. Incoming gestures are dispatched only
while the session is connected; pause, resume and emergency stop are
always available locally.

Examples:
  remotescreen host
  remotescreen host --domain relay.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHost()
	},
}

func runHost() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	code := pairing.Generate()

	stopSpinner := ui.RunConnectionSpinner("Connecting to relay...")
	ep, err := NewEndpoint(cfg, code, session.RoleInitiator)
	if err != nil {
		stopSpinner()
		return err
	}
	defer ep.Close()
	stopSpinner()

	gate := gesture.NewGate(ep.Machine, gesture.LogExecutor{}, ep.Log)

	// The control data channel must exist before the offer so it is
	// negotiated into the session.
	dc, err := negotiation.NewControlChannel(ep.PC)
	if err != nil {
		return fmt.Errorf("create control channel: %w", err)
	}
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		cmd, _, err := gesture.DecodeChannel(msg.Data)
		if err != nil {
			gate.RejectInvalid(err)
			return
		}
		gate.Deliver(cmd)
	})

	ui.RenderCodeInfo(code)

	go ep.runSignalLoop()
	go watchInterrupt(ep)

	stopSpinner = ui.RunWaitingSpinner("Waiting for controller to join...")
	select {
	case <-ep.SigHandler.PeerJoined:
		stopSpinner()
	case <-time.After(cfg.NegotiationTimeout):
		stopSpinner()
		ep.Machine.Fail("no peer joined in time")
		ep.printClosing()
		return fmt.Errorf("no controller joined within %s", cfg.NegotiationTimeout)
	case <-ep.Done():
		stopSpinner()
		ep.printClosing()
		return nil
	}

	if err := ep.Engine.StartOffer(); err != nil {
		ep.Machine.Fail("negotiation failed: " + err.Error())
		ep.printClosing()
		return err
	}

	stopSpinner = ui.RunConnectionSpinner("Establishing direct connection...")
	if err := awaitConnected(ep, "controller"); err != nil {
		stopSpinner()
		ep.printClosing()
		return err
	}
	stopSpinner()

	ui.PrintSuccess("Controller connected. Session is live.")
	ui.PrintInfo("Commands: pause, resume, end (Ctrl-C for emergency stop)")

	ep.startHeartbeat()
	go runGestureLoop(ep, gate)

	runHostConsole(ep)
	ep.printClosing()
	return nil
}

// awaitConnected blocks until the transport reaches CONNECTED and the
// session machine records the partner, or the handshake fails. The
// partner id comes from the peer's descriptions; the fallback label is
// only for peers that never stamped one.
func awaitConnected(ep *Endpoint, fallback string) error {
	select {
	case <-ep.Engine.Connected():
		partner := ep.SigHandler.RemoteSessionID()
		if partner == "" {
			partner = fallback
		}
		return ep.Machine.PeerConnected(partner)
	case err := <-ep.Engine.Failed():
		ep.Machine.Fail(err.Error())
		return err
	case <-time.After(ep.Config.NegotiationTimeout):
		ep.Machine.Fail("negotiation timed out")
		return fmt.Errorf("negotiation timed out after %s", ep.Config.NegotiationTimeout)
	case <-ep.Done():
		return fmt.Errorf("session closed")
	}
}

// runGestureLoop decodes relayed gesture frames and hands them to the
// gate until the endpoint closes.
func runGestureLoop(ep *Endpoint, gate *gesture.Gate) {
	for {
		select {
		case raw := <-ep.CtlHandler.Gesture:
			cmd, _, err := gesture.Decode(raw)
			if err != nil {
				gate.RejectInvalid(err)
				continue
			}
			gate.Deliver(cmd)

		case <-ep.CtlHandler.Closed:
			ep.Machine.Fail("control connection lost")
			return

		case <-ep.Done():
			return
		}
	}
}

// runHostConsole reads pause/resume/end commands until the session
// reaches a terminal state.
func runHostConsole(ep *Endpoint) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	changes := ep.Machine.Subscribe(8)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				ep.Machine.End()
				return
			}
			switch line {
			case "pause":
				ep.Machine.Pause()
				ui.PrintInfo("Session paused")
			case "resume":
				ep.Machine.Resume()
				ui.PrintInfo("Session resumed")
			case "end", "stop", "quit":
				ep.Machine.End()
				return
			case "":
			default:
				ui.PrintWarning("unknown command: " + line)
			}

		case change := <-changes:
			if change.To.Terminal() {
				return
			}

		case <-ep.Done():
			return
		}
	}
}

// watchInterrupt makes Ctrl-C an emergency stop: the local transition
// happens first and unconditionally, network teardown after.
func watchInterrupt(ep *Endpoint) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	select {
	case <-sig:
		ep.Machine.EmergencyStop()
		ep.Close()
	case <-ep.Done():
	}
}

func init() {
	rootCmd.AddCommand(hostCmd)
}
