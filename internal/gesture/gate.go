package gesture

import (
	"log/slog"

	"github.com/adityakqumar/RemoteScreen/internal/session"
)

// Gate is the single authorization checkpoint between decoded commands
// and the executor. It is open exactly while the local session is
// CONNECTED; nothing else can open it.
type Gate struct {
	machine *session.Machine
	exec    Executor
	log     *session.ActivityLog
}

// NewGate wires a gate to its session machine, executor and activity
// log. Passing these in explicitly (instead of package globals) keeps
// concurrent sessions isolated and the gate testable.
func NewGate(machine *session.Machine, exec Executor, log *session.ActivityLog) *Gate {
	return &Gate{machine: machine, exec: exec, log: log}
}

// Deliver forwards cmd to the executor iff the session is CONNECTED,
// and reports whether it was dispatched. The authorization check and
// the dispatch run under the session's status lock, so a command can
// never be judged authorized and then dispatched after the gate has
// since closed. Both outcomes land in the activity log.
func (g *Gate) Deliver(cmd Command) bool {
	var execErr error
	dispatched := g.machine.WhileConnected(func() {
		execErr = g.exec.Dispatch(cmd)
	})

	if !dispatched {
		g.log.Append(session.EntryGestureDenied, Describe(cmd))
		slog.Warn("gesture denied, gate closed", "command", Describe(cmd), "status", g.machine.Status())
		return false
	}

	if execErr != nil {
		g.log.Append(session.EntryGestureAllowed, Describe(cmd)+" (executor error: "+execErr.Error()+")")
		slog.Error("executor failed", "command", Describe(cmd), "err", execErr)
		return true
	}

	g.log.Append(session.EntryGestureAllowed, Describe(cmd))
	return true
}

// RejectInvalid records a command that failed decoding. Decode failures
// share the audit trail with denied commands so the log is a complete
// record of accepted and refused actions.
func (g *Gate) RejectInvalid(err error) {
	g.log.Append(session.EntryGestureInvalid, err.Error())
	slog.Warn("gesture rejected at codec", "err", err)
}
