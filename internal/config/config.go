package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default configuration values (production)
const (
	DefaultDomain   = "relay.remotescreen.app"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
	DefaultTURN     = "" // Optional, empty by default
	DefaultTURNUser = ""
	DefaultTURNPass = ""

	// DefaultHeartbeatInterval paces the control-channel heartbeat.
	DefaultHeartbeatInterval = 5 * time.Second

	// DefaultNegotiationTimeout bounds how long an endpoint waits for
	// a peer to join and the handshake to complete before the session
	// is failed to ERROR.
	DefaultNegotiationTimeout = 60 * time.Second
)

// Config holds application configuration
type Config struct {
	// Domain is the relay server domain
	Domain string

	// WebSocketURL is constructed from domain
	WebSocketURL string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	HeartbeatInterval  time.Duration
	NegotiationTimeout time.Duration
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain     string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	Insecure   bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := firstOf(opts.Domain, os.Getenv("DOMAIN"), DefaultDomain)
	stunServer := firstOf(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turnServer := firstOf(opts.TURNServer, os.Getenv("TURN_SERVER"), DefaultTURN)
	turnUser := firstOf(opts.TURNUser, os.Getenv("TURN_USERNAME"), DefaultTURNUser)
	turnPass := firstOf(opts.TURNPass, os.Getenv("TURN_PASSWORD"), DefaultTURNPass)

	heartbeat := DefaultHeartbeatInterval
	if v := os.Getenv("HEARTBEAT_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid HEARTBEAT_INTERVAL_SECONDS: %q", v)
		}
		heartbeat = time.Duration(secs) * time.Second
	}

	negotiation := DefaultNegotiationTimeout
	if v := os.Getenv("NEGOTIATION_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid NEGOTIATION_TIMEOUT_SECONDS: %q", v)
		}
		negotiation = time.Duration(secs) * time.Second
	}

	scheme := "wss"
	if opts.Insecure || os.Getenv("INSECURE_WS") == "1" {
		scheme = "ws"
	}

	return &Config{
		Domain:             domain,
		WebSocketURL:       fmt.Sprintf("%s://%s/ws", scheme, domain),
		STUNServer:         stunServer,
		TURNServer:         turnServer,
		TURNUser:           turnUser,
		TURNPass:           turnPass,
		HeartbeatInterval:  heartbeat,
		NegotiationTimeout: negotiation,
	}, nil
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// SignalingURL returns the websocket URL for the signaling plane of a room.
func (c *Config) SignalingURL(code string) string {
	return fmt.Sprintf("%s?code=%s&channel=signaling", c.WebSocketURL, code)
}

// ControlURL returns the websocket URL for the control plane of a room.
func (c *Config) ControlURL(code string) string {
	return fmt.Sprintf("%s?code=%s&channel=control", c.WebSocketURL, code)
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
