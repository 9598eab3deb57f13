package main

import (
	"log/slog"

	"github.com/adityakqumar/RemoteScreen/internal/cli"
	"github.com/adityakqumar/RemoteScreen/internal/logging"
)

func main() {
	logging.Init(slog.LevelError)
	cli.Execute()
}
