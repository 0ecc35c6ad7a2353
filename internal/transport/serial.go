package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
)

// serialWriteTimeout bounds a single frame write. The port has no write
// deadline, so a radio holding off flow control would otherwise stall the
// caller.
const serialWriteTimeout = 50 * time.Millisecond

// ErrStalled is returned while an earlier timed-out write is still blocked
// on the port.
var ErrStalled = errors.New("transport: serial port stalled")

// Serial writes frames to a telemetry radio on a serial port.
type Serial struct {
	mu      sync.Mutex
	port    io.WriteCloser
	closed  bool
	timeout time.Duration
	stalled chan writeResult // set while a timed-out write is outstanding
}

type writeResult struct {
	n   int
	err error
}

// OpenSerial opens the serial device at path.
func OpenSerial(path string, opts PortOptions) (*Serial, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", path, err)
	}
	return NewSerial(port), nil
}

// NewSerial wraps an already open port.
func NewSerial(port io.WriteCloser) *Serial {
	return &Serial{port: port, timeout: serialWriteTimeout}
}

// Send writes the whole frame; a short write is an error. A write that does
// not finish within the timeout fails, and later sends fail with ErrStalled
// until the port accepts that write.
func (s *Serial) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.stalled != nil {
		select {
		case <-s.stalled:
			s.stalled = nil
		default:
			return ErrStalled
		}
	}

	// The write may outlive this call, so it gets its own copy.
	buf := append([]byte(nil), frame...)
	done := make(chan writeResult, 1)
	go func() {
		n, err := s.port.Write(buf)
		done <- writeResult{n, err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		if r.n != len(frame) {
			return fmt.Errorf("short serial write: %d of %d bytes", r.n, len(frame))
		}
		return nil
	case <-timer.C:
		s.stalled = done
		return fmt.Errorf("serial write timed out after %v", s.timeout)
	}
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}
