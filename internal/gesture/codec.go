package gesture

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adityakqumar/RemoteScreen/internal/relay"
)

// Codec errors. All of them mean "drop and log"; none are fatal to the
// message loop, and none are relayed back to the remote peer.
var (
	ErrNotGesture      = errors.New("not a gesture message")
	ErrUnknownAction   = errors.New("unknown gesture action")
	ErrCoordinateRange = errors.New("coordinate outside [0,1]")
)

// wireGesture is the flat frame both codecs share: JSON on the relayed
// control channel, msgpack payload on the direct data channel. It
// carries the session/room id alongside the action fields.
type wireGesture struct {
	Type       string  `json:"type" msgpack:"-"`
	SessionID  string  `json:"sessionId" msgpack:"sessionId"`
	Action     Action  `json:"action" msgpack:"action"`
	X          float64 `json:"x,omitempty" msgpack:"x,omitempty"`
	Y          float64 `json:"y,omitempty" msgpack:"y,omitempty"`
	StartX     float64 `json:"startX,omitempty" msgpack:"startX,omitempty"`
	StartY     float64 `json:"startY,omitempty" msgpack:"startY,omitempty"`
	EndX       float64 `json:"endX,omitempty" msgpack:"endX,omitempty"`
	EndY       float64 `json:"endY,omitempty" msgpack:"endY,omitempty"`
	DeltaX     float64 `json:"deltaX,omitempty" msgpack:"deltaX,omitempty"`
	DeltaY     float64 `json:"deltaY,omitempty" msgpack:"deltaY,omitempty"`
	DurationMs int64   `json:"durationMs,omitempty" msgpack:"durationMs,omitempty"`
	Text       string  `json:"text,omitempty" msgpack:"text,omitempty"`
	CapturedAt int64   `json:"capturedAt,omitempty" msgpack:"capturedAt,omitempty"`
}

// Encode serializes a command as a relayable JSON frame carrying the
// session id. Out-of-range coordinates are rejected before they ever
// reach the wire.
func Encode(cmd Command, sessionID string) ([]byte, error) {
	w, err := toWire(cmd, sessionID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// Decode parses a relayed JSON frame back into a typed command. An
// unrecognized action or an out-of-range coordinate produces an
// explicit error, never a nil command.
func Decode(data []byte) (Command, string, error) {
	var w wireGesture
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, "", fmt.Errorf("decode gesture: %w", err)
	}
	if w.Type != relay.TypeGesture {
		return nil, "", ErrNotGesture
	}
	cmd, err := fromWire(w)
	if err != nil {
		return nil, "", err
	}
	return cmd, w.SessionID, nil
}

func toWire(cmd Command, sessionID string) (wireGesture, error) {
	w := wireGesture{
		Type:       relay.TypeGesture,
		SessionID:  sessionID,
		Action:     cmd.Action(),
		CapturedAt: cmd.CapturedAt().UnixMilli(),
	}

	switch c := cmd.(type) {
	case Tap:
		w.X, w.Y = c.X, c.Y
	case Swipe:
		w.StartX, w.StartY = c.StartX, c.StartY
		w.EndX, w.EndY = c.EndX, c.EndY
		w.DurationMs = c.Duration.Milliseconds()
	case LongPress:
		w.X, w.Y = c.X, c.Y
		w.DurationMs = c.Duration.Milliseconds()
	case Scroll:
		w.StartX, w.StartY = c.StartX, c.StartY
		w.DeltaX, w.DeltaY = c.DeltaX, c.DeltaY
		w.DurationMs = c.Duration.Milliseconds()
	case TextInput:
		w.Text = c.Text
	case Back, Home, Recents:
	default:
		return wireGesture{}, fmt.Errorf("%w: %T", ErrUnknownAction, cmd)
	}

	if err := checkCoordinates(w); err != nil {
		return wireGesture{}, err
	}
	return w, nil
}

// fromWire is the exhaustive match over the action tag.
func fromWire(w wireGesture) (Command, error) {
	if err := checkCoordinates(w); err != nil {
		return nil, err
	}

	at := time.UnixMilli(w.CapturedAt)
	dur := time.Duration(w.DurationMs) * time.Millisecond

	switch w.Action {
	case ActionTap:
		return Tap{X: w.X, Y: w.Y, At: at}, nil
	case ActionSwipe:
		return Swipe{StartX: w.StartX, StartY: w.StartY, EndX: w.EndX, EndY: w.EndY, Duration: dur, At: at}, nil
	case ActionLongPress:
		return LongPress{X: w.X, Y: w.Y, Duration: dur, At: at}, nil
	case ActionScroll:
		return Scroll{StartX: w.StartX, StartY: w.StartY, DeltaX: w.DeltaX, DeltaY: w.DeltaY, Duration: dur, At: at}, nil
	case ActionTextInput:
		return TextInput{Text: w.Text, At: at}, nil
	case ActionBack:
		return Back{At: at}, nil
	case ActionHome:
		return Home{At: at}, nil
	case ActionRecents:
		return Recents{At: at}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, w.Action)
	}
}

// checkCoordinates enforces the normalized [0,1] range at the codec
// boundary. Deltas are relative movements and may be negative, but
// still bounded by the screen.
func checkCoordinates(w wireGesture) error {
	for _, v := range []float64{w.X, w.Y, w.StartX, w.StartY, w.EndX, w.EndY} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %v", ErrCoordinateRange, v)
		}
	}
	for _, v := range []float64{w.DeltaX, w.DeltaY} {
		if v < -1 || v > 1 {
			return fmt.Errorf("%w: delta %v", ErrCoordinateRange, v)
		}
	}
	return nil
}
