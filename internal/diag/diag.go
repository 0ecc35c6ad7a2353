// Package diag is the diagnostic sink shared by the autopilot services.
//
// Output is split into three log streams:
//
//   - ops: warnings, criticals and lifecycle events
//   - diag: day-to-day diagnostics
//   - trace: high-frequency per-packet telemetry
//
// Warnings and criticals are additionally broadcast on signals so that the
// ground-station console can mirror them.
package diag

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/banshee-data/qgclink/internal/notify"
)

// Text prefixes of broadcast messages.
const (
	WarningPrefix  = "Warning: "
	CriticalPrefix = "Critical: "
)

// LogWriters holds the io.Writers for each logging stream.
type LogWriters struct {
	Ops   io.Writer
	Diag  io.Writer
	Trace io.Writer
}

// Sink writes diagnostics and broadcasts warnings and criticals.
type Sink struct {
	mu    sync.RWMutex
	ops   *log.Logger
	diag  *log.Logger
	trace *log.Logger

	// Warnings receives the full text of every Warningf call.
	Warnings *notify.Signal[string]
	// Criticals receives the full text of every Criticalf call.
	Criticals *notify.Signal[string]
}

// New returns a sink writing to w. Nil writers disable their stream.
func New(w LogWriters) *Sink {
	s := &Sink{
		Warnings:  notify.NewSignal[string](),
		Criticals: notify.NewSignal[string](),
	}
	s.SetLogWriters(w)
	return s
}

// Discard returns a sink with every stream disabled. Signals still fire.
func Discard() *Sink {
	return New(LogWriters{})
}

// SetLogWriters configures all three logging streams at once.
func (s *Sink) SetLogWriters(w LogWriters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = newLogger("[qgc] ", w.Ops)
	s.diag = newLogger("[qgc] ", w.Diag)
	s.trace = newLogger("[qgc] ", w.Trace)
}

func newLogger(prefix string, w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, prefix, log.LstdFlags|log.Lmicroseconds)
}

func (s *Sink) loggers() (ops, diag, trace *log.Logger) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ops, s.diag, s.trace
}

// Opsf logs a lifecycle event to the ops stream without broadcasting.
func (s *Sink) Opsf(format string, args ...interface{}) {
	if l, _, _ := s.loggers(); l != nil {
		l.Printf(format, args...)
	}
}

// Debugf logs to the diag stream.
func (s *Sink) Debugf(format string, args ...interface{}) {
	if _, l, _ := s.loggers(); l != nil {
		l.Printf(format, args...)
	}
}

// Tracef logs to the trace stream.
func (s *Sink) Tracef(format string, args ...interface{}) {
	if _, _, l := s.loggers(); l != nil {
		l.Printf(format, args...)
	}
}

// Warningf logs a warning and broadcasts it.
func (s *Sink) Warningf(format string, args ...interface{}) {
	s.broadcast(WarningPrefix+fmt.Sprintf(format, args...), s.Warnings)
}

// Criticalf logs a critical error and broadcasts it.
func (s *Sink) Criticalf(format string, args ...interface{}) {
	s.broadcast(CriticalPrefix+fmt.Sprintf(format, args...), s.Criticals)
}

func (s *Sink) broadcast(text string, sig *notify.Signal[string]) {
	if l, _, _ := s.loggers(); l != nil {
		l.Print(text)
	}
	sig.Emit(text)
}
