package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/spf13/cobra"

	"github.com/adityakqumar/RemoteScreen/internal/gesture"
	"github.com/adityakqumar/RemoteScreen/internal/negotiation"
	"github.com/adityakqumar/RemoteScreen/internal/pairing"
	"github.com/adityakqumar/RemoteScreen/internal/session"
	"github.com/adityakqumar/RemoteScreen/internal/ui"
)

var connectCmd = &cobra.Command{
	Use:     "connect <code>",
	Aliases: []string{"c"},
	Short:   "Connect to a hosted session as the controller",
	Long: `Join a session using the pairing code shown on the target device and
send input gestures once connected.

Gesture commands (coordinates are normalized 0..1):
  tap <x> <y>
  swipe <startX> <startY> <endX> <endY> [durationMs]
  longpress <x> <y> [durationMs]
  scroll <startX> <startY> <deltaX> <deltaY> [durationMs]
  text <text...>
  back | home | recents

Examples:
  remotescreen connect A7K3M9
  remotescreen connect a7k3m9 --domain relay.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConnect(args[0])
	},
}

// channelSender tracks the direct data channel. Gestures prefer it once
// open and fall back to the control relay before that.
type channelSender struct {
	mu   sync.Mutex
	dc   *webrtc.DataChannel
	open bool
}

func (s *channelSender) attach(dc *webrtc.DataChannel) {
	s.mu.Lock()
	s.dc = dc
	s.mu.Unlock()

	dc.OnOpen(func() {
		s.mu.Lock()
		s.open = true
		s.mu.Unlock()
	})
	dc.OnClose(func() {
		s.mu.Lock()
		s.open = false
		s.mu.Unlock()
	})
}

// trySend sends over the data channel if it is open.
func (s *channelSender) trySend(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.dc == nil {
		return false
	}
	return s.dc.Send(data) == nil
}

func runConnect(rawCode string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	code := pairing.Normalize(rawCode)
	if !pairing.IsValidFormat(code) {
		return fmt.Errorf("invalid pairing code: %q", rawCode)
	}

	stopSpinner := ui.RunConnectionSpinner("Connecting to relay...")
	ep, err := NewEndpoint(cfg, code, session.RoleResponder)
	if err != nil {
		stopSpinner()
		return err
	}
	defer ep.Close()
	stopSpinner()

	sender := &channelSender{}
	negotiation.OnControlChannel(ep.PC, sender.attach)

	go ep.runSignalLoop()
	go watchInterrupt(ep)

	stopSpinner = ui.RunConnectionSpinner("Waiting for target to connect...")
	if err := awaitConnected(ep, "target"); err != nil {
		stopSpinner()
		ep.printClosing()
		return err
	}
	stopSpinner()

	ui.PrintSuccess("Connected to target. Type gestures, or 'end' to finish.")

	ep.startHeartbeat()
	runControllerConsole(ep, sender)
	ep.printClosing()
	return nil
}

// runControllerConsole reads gesture lines from stdin and sends them
// until the session ends.
func runControllerConsole(ep *Endpoint, sender *channelSender) {
	sessionID := ep.Machine.Snapshot().ID

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
			if line == "" {
				continue
			}
			if line == "end" || line == "stop" || line == "quit" {
				ep.Machine.End()
				return
			}

			cmd, err := parseGesture(line)
			if err != nil {
				ui.PrintWarning(err.Error())
				continue
			}
			if ep.Machine.Status() != session.StatusConnected {
				ui.PrintWarning("session is not connected; gesture not sent")
				continue
			}
			if err := sendGesture(ep, sender, cmd, sessionID); err != nil {
				ui.PrintErrorf("failed to send gesture: %v", err)
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

// sendGesture delivers a command over the direct channel when open,
// falling back to the control relay.
func sendGesture(ep *Endpoint, sender *channelSender, cmd gesture.Command, sessionID string) error {
	if data, err := gesture.EncodeChannel(cmd, sessionID); err == nil && sender.trySend(data) {
		return nil
	}

	data, err := gesture.Encode(cmd, sessionID)
	if err != nil {
		return err
	}
	return ep.Control.SendRaw(data)
}

// parseGesture turns one console line into a typed command.
func parseGesture(line string) (gesture.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty gesture")
	}

	now := time.Now()
	verb := strings.ToLower(fields[0])

	floats := func(n int) ([]float64, error) {
		if len(fields) < n+1 {
			return nil, fmt.Errorf("%s needs %d coordinates", verb, n)
		}
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("bad coordinate %q", fields[i+1])
			}
			out[i] = v
		}
		return out, nil
	}

	optionalDuration := func(index int, fallback time.Duration) time.Duration {
		if len(fields) <= index {
			return fallback
		}
		ms, err := strconv.Atoi(fields[index])
		if err != nil || ms <= 0 {
			return fallback
		}
		return time.Duration(ms) * time.Millisecond
	}

	switch verb {
	case "tap":
		v, err := floats(2)
		if err != nil {
			return nil, err
		}
		return gesture.Tap{X: v[0], Y: v[1], At: now}, nil

	case "swipe":
		v, err := floats(4)
		if err != nil {
			return nil, err
		}
		return gesture.Swipe{StartX: v[0], StartY: v[1], EndX: v[2], EndY: v[3], Duration: optionalDuration(5, 300*time.Millisecond), At: now}, nil

	case "longpress", "long-press":
		v, err := floats(2)
		if err != nil {
			return nil, err
		}
		return gesture.LongPress{X: v[0], Y: v[1], Duration: optionalDuration(3, 500*time.Millisecond), At: now}, nil

	case "scroll":
		v, err := floats(4)
		if err != nil {
			return nil, err
		}
		return gesture.Scroll{StartX: v[0], StartY: v[1], DeltaX: v[2], DeltaY: v[3], Duration: optionalDuration(5, 300*time.Millisecond), At: now}, nil

	case "text":
		if len(fields) < 2 {
			return nil, fmt.Errorf("text needs an argument")
		}
		return gesture.TextInput{Text: strings.Join(fields[1:], " "), At: now}, nil

	case "back":
		return gesture.Back{At: now}, nil
	case "home":
		return gesture.Home{At: now}, nil
	case "recents":
		return gesture.Recents{At: now}, nil
	}

	return nil, fmt.Errorf("unknown gesture: %s", verb)
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
