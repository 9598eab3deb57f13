package gesture

import "log/slog"

// Executor performs the OS-level input gesture. Implementations live
// outside this module; the gate only ever talks to this interface.
type Executor interface {
	Dispatch(cmd Command) error
}

// LogExecutor is the stand-in executor used by the CLI: it records each
// dispatched command instead of injecting input.
type LogExecutor struct{}

func (LogExecutor) Dispatch(cmd Command) error {
	slog.Info("dispatching gesture", "command", Describe(cmd), "captured_at", cmd.CapturedAt())
	return nil
}
