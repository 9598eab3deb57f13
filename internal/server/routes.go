package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/adityakqumar/RemoteScreen/internal/pairing"
	"github.com/adityakqumar/RemoteScreen/internal/relay"
)

// Configure the websocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  64 * 1024, // 64 KB
	WriteBufferSize: 64 * 1024, // 64 KB

	// We need to check the origin, but for development, we can allow all.
	// In production, you'd check r.Header.Get("Origin") against your frontend's domain
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all connections for now
	},
}

// ServeWs returns an http.HandlerFunc that upgrades websocket requests
// and registers them with the hub. The pairing code and channel kind
// arrive as query parameters: /ws?code=A7K3M9&channel=control
func ServeWs(hub *relay.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := pairing.Normalize(r.URL.Query().Get("code"))
		if code != "" && !pairing.IsValidFormat(code) {
			http.Error(w, "invalid pairing code", http.StatusBadRequest)
			return
		}

		kind, ok := relay.ParseChannelKind(r.URL.Query().Get("channel"))
		if !ok {
			http.Error(w, "invalid channel kind", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("failed to upgrade connection", "err", err)
			return
		}

		client := &relay.Client{
			ID:       uuid.New().String(),
			Hub:      hub,
			Conn:     conn,
			RoomCode: code,
			Kind:     kind,
			Send:     make(chan []byte, 256),
		}

		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

// healthResponse is the body of the health endpoint.
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health reports liveness. The relay holds no durable state, so alive
// means healthy.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
	})
}
