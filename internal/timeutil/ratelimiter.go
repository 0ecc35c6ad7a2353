package timeutil

import (
	"context"
	"time"
)

// RateLimiter paces a loop at a fixed frequency. Wait blocks for the
// remainder of the current period; it guarantees a floor, not a ceiling, on
// iteration duration.
//
// When an iteration overruns its period the next Wait returns immediately and
// the schedule is re-anchored to the current time, so a slow iteration is
// followed by one normal period rather than a burst of catch-up iterations.
type RateLimiter struct {
	clock  Clock
	period time.Duration

	started bool
	next    time.Time
	wake    time.Time
}

// NewRateLimiter returns a limiter running at hz iterations per second.
// A nil clock uses RealClock.
func NewRateLimiter(hz int, clock Clock) *RateLimiter {
	if hz <= 0 {
		hz = 1
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &RateLimiter{
		clock:  clock,
		period: time.Second / time.Duration(hz),
	}
}

// Period returns the length of one iteration.
func (r *RateLimiter) Period() time.Duration {
	return r.period
}

// Wait blocks until the start of the next period or until ctx is done. The
// first call returns immediately and anchors the schedule.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := r.clock.Now()
	switch {
	case !r.started:
		r.started = true
		r.next = now
	case now.Before(r.next):
		timer := r.clock.NewTimer(r.next.Sub(now))
		select {
		case <-timer.C():
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	case now.After(r.next):
		// overran, drift rather than burst
		r.next = now
	}

	r.wake = r.next
	r.next = r.next.Add(r.period)
	return nil
}

// FinishedCriticalSection marks the end of the iteration's work and returns
// how long the work took since the last wake-up.
func (r *RateLimiter) FinishedCriticalSection() time.Duration {
	if !r.started {
		return 0
	}
	return r.clock.Now().Sub(r.wake)
}
