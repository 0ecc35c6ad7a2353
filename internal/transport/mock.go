package transport

import (
	"errors"
	"sync"
)

// ErrInjected is the failure Mock returns for frames listed in FailAt.
var ErrInjected = errors.New("transport: injected failure")

// Mock records every frame sent through it.
type Mock struct {
	mu     sync.Mutex
	frames [][]byte
	sends  int
	failAt map[int]bool
	closed bool
}

// NewMock returns a Mock that fails the sends at the given zero-based
// indices (counted over all Send calls, failed or not).
func NewMock(failAt ...int) *Mock {
	m := &Mock{failAt: make(map[int]bool)}
	for _, i := range failAt {
		m.failAt[i] = true
	}
	return m
}

// Send records frame unless the call index is set to fail.
func (m *Mock) Send(frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	i := m.sends
	m.sends++
	if m.failAt[i] {
		return ErrInjected
	}
	m.frames = append(m.frames, append([]byte(nil), frame...))
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Frames returns a copy of the frames sent successfully.
func (m *Mock) Frames() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.frames))
	copy(out, m.frames)
	return out
}

// Sends returns the number of Send calls, including failed ones.
func (m *Mock) Sends() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sends
}

// Reset forgets recorded frames and the send count.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = nil
	m.sends = 0
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
