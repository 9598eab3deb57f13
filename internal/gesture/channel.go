package gesture

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// channelMessageType is the frame discriminator on the direct data
// channel. Only gestures travel there today; the framing leaves room
// for more.
const channelMessageType = "gesture"

// channelMessage frames data-channel traffic as {type, payload}, with
// the payload msgpack-encoded separately so unknown types can be
// skipped without decoding their bodies.
type channelMessage struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// EncodeChannel serializes a command for the direct peer-to-peer data
// channel. Same validation as the relayed JSON form.
func EncodeChannel(cmd Command, sessionID string) ([]byte, error) {
	w, err := toWire(cmd, sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := msgpack.Marshal(w)
	if err != nil {
		return nil, err
	}

	return msgpack.Marshal(channelMessage{Type: channelMessageType, Payload: payload})
}

// DecodeChannel parses a data-channel frame back into a typed command
// and the session id it was captured under.
func DecodeChannel(data []byte) (Command, string, error) {
	var msg channelMessage
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, "", fmt.Errorf("decode channel frame: %w", err)
	}
	if msg.Type != channelMessageType {
		return nil, "", fmt.Errorf("%w: channel frame type %q", ErrNotGesture, msg.Type)
	}

	var w wireGesture
	if err := msgpack.Unmarshal(msg.Payload, &w); err != nil {
		return nil, "", fmt.Errorf("decode channel payload: %w", err)
	}

	cmd, err := fromWire(w)
	if err != nil {
		return nil, "", err
	}
	return cmd, w.SessionID, nil
}
