package grid3d

import (
	"io"
	"log"
)

// Logs carries the three logging streams used by the grid operations.
// It is passed explicitly through Options; a nil *Logs discards everything.
type Logs struct {
	ops   *log.Logger
	diag  *log.Logger
	trace *log.Logger
}

// NewLogs builds the ops, diag and trace streams.
// Pass nil for any writer to disable that stream.
func NewLogs(ops, diag, trace io.Writer) *Logs {
	return &Logs{
		ops:   newLogger("[grid3d] ", ops),
		diag:  newLogger("[grid3d] ", diag),
		trace: newLogger("[grid3d] ", trace),
	}
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

// Opsf logs to the ops stream (actionable warnings and errors).
func (l *Logs) Opsf(format string, args ...interface{}) {
	if l != nil && l.ops != nil {
		l.ops.Printf(format, args...)
	}
}

// Diagf logs to the diag stream (per-call summaries, tuning context).
func (l *Logs) Diagf(format string, args ...interface{}) {
	if l != nil && l.diag != nil {
		l.diag.Printf(format, args...)
	}
}

// Tracef logs to the trace stream (per-pillar detail).
func (l *Logs) Tracef(format string, args ...interface{}) {
	if l != nil && l.trace != nil {
		l.trace.Printf(format, args...)
	}
}

// tracing reports whether per-pillar detail should be produced at all.
func (l *Logs) tracing() bool {
	return l != nil && l.trace != nil
}
