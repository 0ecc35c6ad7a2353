// Package notify provides typed change-notification signals. A producer owns
// a Signal and emits every new value; any number of observers connect a
// callback and keep the returned Connection to disconnect later.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Source is the subscribe side of a Signal, handed to observers.
type Source[T any] interface {
	// Connect registers fn to be called with every emitted value.
	Connect(fn func(T)) *Connection
}

// Signal broadcasts values of type T to connected callbacks. Callbacks run
// synchronously on the emitting goroutine and must not block.
type Signal[T any] struct {
	mu       sync.Mutex
	handlers map[string]func(T)
	order    []string
}

// NewSignal returns an empty signal.
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{handlers: make(map[string]func(T))}
}

// Connect registers fn and returns its connection.
func (s *Signal[T]) Connect(fn func(T)) *Connection {
	id := uuid.NewString()
	s.mu.Lock()
	if s.handlers == nil {
		s.handlers = make(map[string]func(T))
	}
	s.handlers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()
	return &Connection{id: id, disconnect: func() { s.disconnect(id) }}
}

func (s *Signal[T]) disconnect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[id]; !ok {
		return
	}
	delete(s.handlers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Emit calls every connected callback with v, in connection order.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len reports the number of connected callbacks.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Connection is a live subscription. Disconnect is idempotent.
type Connection struct {
	id         string
	once       sync.Once
	disconnect func()
}

// ID returns the unique id of the connection.
func (c *Connection) ID() string { return c.id }

// Disconnect removes the callback from its signal.
func (c *Connection) Disconnect() {
	if c == nil {
		return
	}
	c.once.Do(c.disconnect)
}

// Group collects connections so they can be released together.
type Group struct {
	mu    sync.Mutex
	conns []*Connection
}

// Add tracks c.
func (g *Group) Add(c *Connection) {
	g.mu.Lock()
	g.conns = append(g.conns, c)
	g.mu.Unlock()
}

// DisconnectAll disconnects every tracked connection, newest first.
func (g *Group) DisconnectAll() {
	g.mu.Lock()
	conns := g.conns
	g.conns = nil
	g.mu.Unlock()
	for i := len(conns) - 1; i >= 0; i-- {
		conns[i].Disconnect()
	}
}
