package notify

import (
	"sync"
	"testing"
)

func TestSignal_EmitInConnectionOrder(t *testing.T) {
	s := NewSignal[int]()
	var got []string
	s.Connect(func(v int) { got = append(got, "a") })
	s.Connect(func(v int) { got = append(got, "b") })

	s.Emit(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("callback order = %v, want [a b]", got)
	}
}

func TestSignal_Disconnect(t *testing.T) {
	s := NewSignal[string]()
	calls := 0
	c := s.Connect(func(string) { calls++ })
	if c.ID() == "" {
		t.Fatal("connection id is empty")
	}

	s.Emit("x")
	c.Disconnect()
	c.Disconnect() // idempotent
	s.Emit("y")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after disconnect, want 0", s.Len())
	}
}

func TestSignal_UniqueIDs(t *testing.T) {
	s := NewSignal[int]()
	a := s.Connect(func(int) {})
	b := s.Connect(func(int) {})
	if a.ID() == b.ID() {
		t.Error("connection ids should be unique")
	}
}

func TestSignal_ZeroValueUsable(t *testing.T) {
	var s Signal[int]
	got := 0
	s.Connect(func(v int) { got = v })
	s.Emit(42)
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestSignal_DisconnectFromCallback(t *testing.T) {
	s := NewSignal[int]()
	var c *Connection
	calls := 0
	c = s.Connect(func(int) {
		calls++
		c.Disconnect()
	})
	s.Emit(1)
	s.Emit(2)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSignal_ConcurrentEmit(t *testing.T) {
	s := NewSignal[int]()
	var mu sync.Mutex
	total := 0
	s.Connect(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Emit(1)
		}()
	}
	wg.Wait()

	if total != 50 {
		t.Errorf("total = %d, want 50", total)
	}
}

func TestGroup_DisconnectAll(t *testing.T) {
	a := NewSignal[int]()
	b := NewSignal[bool]()
	var g Group
	g.Add(a.Connect(func(int) {}))
	g.Add(b.Connect(func(bool) {}))

	g.DisconnectAll()

	if a.Len() != 0 || b.Len() != 0 {
		t.Errorf("Len after DisconnectAll = %d, %d; want 0, 0", a.Len(), b.Len())
	}
	var nilConn *Connection
	nilConn.Disconnect()
}
