package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Now(t *testing.T) {
	clock := RealClock{}
	before := time.Now()
	now := clock.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", now, before, after)
	}
}

func TestRealClock_NewTimer(t *testing.T) {
	clock := RealClock{}
	timer := clock.NewTimer(10 * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C():
	case <-time.After(time.Second):
		t.Error("timer did not fire")
	}
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(time.Hour)

	if !clock.Now().Equal(start.Add(time.Hour)) {
		t.Errorf("got %v, want %v", clock.Now(), start.Add(time.Hour))
	}
}

func TestMockClock_Timer(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	timer := clock.NewTimer(5 * time.Millisecond)
	if clock.PendingTimers() != 1 {
		t.Fatalf("PendingTimers() = %d, want 1", clock.PendingTimers())
	}

	clock.Advance(4 * time.Millisecond)
	select {
	case <-timer.C():
		t.Fatal("timer fired too early")
	default:
	}

	clock.Advance(time.Millisecond)
	select {
	case <-timer.C():
	default:
		t.Fatal("timer did not fire at its deadline")
	}
	if clock.PendingTimers() != 0 {
		t.Errorf("PendingTimers() = %d after firing, want 0", clock.PendingTimers())
	}
}

func TestMockClock_TimerStop(t *testing.T) {
	clock := NewMockClock(time.Now())
	timer := clock.NewTimer(time.Minute)
	if !timer.Stop() {
		t.Error("Stop should return true for active timer")
	}
	if timer.Stop() {
		t.Error("second Stop should return false")
	}

	clock.Advance(2 * time.Minute)
	select {
	case <-timer.C():
		t.Error("stopped timer should not fire")
	default:
	}
}
