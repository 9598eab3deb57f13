package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/adityakqumar/RemoteScreen/internal/logging"
	"github.com/adityakqumar/RemoteScreen/internal/relay"
	"github.com/adityakqumar/RemoteScreen/internal/server"
)

func main() {
	logging.Init(slog.LevelInfo)

	// 1. Create the Hub and run its event loop in a separate goroutine.
	hub := relay.NewHub()
	go hub.Run()

	// 2. Register our handlers.
	http.HandleFunc("/healthz", server.Health)
	http.HandleFunc("/ws", server.ServeWs(hub))

	// 3. Start the server.
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting relay server on http://localhost:%s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
