package negotiation

import (
	"github.com/pion/webrtc/v4"

	"github.com/adityakqumar/RemoteScreen/internal/config"
)

// controlChannelLabel names the data channel carrying gesture traffic
// once the direct connection is up.
const controlChannelLabel = "control"

// NewPeerConnection centralizes ICE server configuration.
func NewPeerConnection(cfg *config.Config) (*webrtc.PeerConnection, error) {
	iceServers := []webrtc.ICEServer{{URLs: cfg.GetSTUNServers()}}

	if turnServers := cfg.GetTURNServers(); turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, webrtc.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	return webrtc.NewPeerConnection(webrtc.Configuration{ICEServers: iceServers})
}

// Attach wires pion's callbacks into the engine: locally gathered
// candidates go out through the engine's sender, and transport state
// changes feed the derived ConnectionState.
func Attach(e *Engine, pc *webrtc.PeerConnection) {
	pc.OnICECandidate(e.HandleLocalCandidate)
	pc.OnConnectionStateChange(e.HandleConnectionChange)
}

// NewControlChannel creates the gesture data channel. Initiator side;
// it must exist before the offer so it is negotiated into the session.
func NewControlChannel(pc *webrtc.PeerConnection) (*webrtc.DataChannel, error) {
	return pc.CreateDataChannel(controlChannelLabel, nil)
}

// OnControlChannel invokes fn when the remote side's control channel
// arrives. Responder side.
func OnControlChannel(pc *webrtc.PeerConnection, fn func(*webrtc.DataChannel)) {
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() == controlChannelLabel {
			fn(dc)
		}
	})
}
