// Package qgclink holds the state shared between the ground station uplink
// handlers and the downlink: runtime stream rates, one-shot request latches
// and the queue of single parameter requests.
//
// Every method is safe for concurrent use and never blocks on the downlink.
package qgclink

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/diag"
)

// DefaultRequestCapacity bounds the single parameter request queue.
const DefaultRequestCapacity = 256

// Stream names a rate-scheduled downlink stream.
type Stream string

const (
	StreamHeartbeat     Stream = "heartbeat"
	StreamRCChannels    Stream = "rc"
	StreamControlOutput Stream = "control"
)

// Streams lists the rate-scheduled streams in send order.
var Streams = []Stream{StreamHeartbeat, StreamRCChannels, StreamControlOutput}

// Rates is a snapshot of the stream rates in Hz.
type Rates struct {
	Heartbeat     int `json:"heartbeat_hz"`
	RCChannels    int `json:"rc_channels_hz"`
	ControlOutput int `json:"control_output_hz"`
}

// Options seeds a Link.
type Options struct {
	Rates           Rates
	RequestCapacity int
}

// Link is the shared link state.
type Link struct {
	heartbeatRate atomic.Int64
	rcRate        atomic.Int64
	controlRate   atomic.Int64

	paramListRequested atomic.Bool
	calibrationRequest atomic.Bool

	mu       sync.Mutex
	requests []autopilot.ParamID
	capacity int
	dropped  uint64

	sink *diag.Sink
}

// New returns a Link with the given initial rates. A nil sink discards
// warnings.
func New(opts Options, sink *diag.Sink) *Link {
	if opts.RequestCapacity <= 0 {
		opts.RequestCapacity = DefaultRequestCapacity
	}
	if sink == nil {
		sink = diag.Discard()
	}
	l := &Link{capacity: opts.RequestCapacity, sink: sink}
	l.heartbeatRate.Store(int64(max(opts.Rates.Heartbeat, 0)))
	l.rcRate.Store(int64(max(opts.Rates.RCChannels, 0)))
	l.controlRate.Store(int64(max(opts.Rates.ControlOutput, 0)))
	return l
}

// HeartbeatRate returns the heartbeat and status stream rate.
func (l *Link) HeartbeatRate() int { return int(l.heartbeatRate.Load()) }

// RCChannelRate returns the RC channel stream rate.
func (l *Link) RCChannelRate() int { return int(l.rcRate.Load()) }

// ControlOutputRate returns the control effort stream rate.
func (l *Link) ControlOutputRate() int { return int(l.controlRate.Load()) }

// Rates returns all stream rates.
func (l *Link) Rates() Rates {
	return Rates{
		Heartbeat:     l.HeartbeatRate(),
		RCChannels:    l.RCChannelRate(),
		ControlOutput: l.ControlOutputRate(),
	}
}

// SetRate changes one stream's rate. Zero disables the stream.
func (l *Link) SetRate(s Stream, hz int) error {
	if hz < 0 {
		return fmt.Errorf("rate must be non-negative, got %d", hz)
	}
	switch s {
	case StreamHeartbeat:
		l.heartbeatRate.Store(int64(hz))
	case StreamRCChannels:
		l.rcRate.Store(int64(hz))
	case StreamControlOutput:
		l.controlRate.Store(int64(hz))
	default:
		return fmt.Errorf("unknown stream %q", s)
	}
	return nil
}

// RequestParamList latches a full parameter dump.
func (l *Link) RequestParamList() { l.paramListRequested.Store(true) }

// TakeParamListRequest clears the parameter dump latch and reports whether
// it was set.
func (l *Link) TakeParamListRequest() bool { return l.paramListRequested.Swap(false) }

// RequestRCCalibration latches a radio calibration send.
func (l *Link) RequestRCCalibration() { l.calibrationRequest.Store(true) }

// TakeRCCalibrationRequest clears the calibration latch and reports whether
// it was set.
func (l *Link) TakeRCCalibrationRequest() bool { return l.calibrationRequest.Swap(false) }

// RequestParam queues a single parameter reply. When the queue is full the
// request is rejected with a warning and false is returned.
func (l *Link) RequestParam(id autopilot.ParamID) bool {
	l.mu.Lock()
	if len(l.requests) >= l.capacity {
		l.dropped++
		l.mu.Unlock()
		l.sink.Warningf("parameter request queue full, dropped request for %d/%s", id.ComponentID, id.Name)
		return false
	}
	l.requests = append(l.requests, id)
	l.mu.Unlock()
	return true
}

// DrainParamRequests removes and returns every queued request in arrival
// order. It returns nil when the queue is empty.
func (l *Link) DrainParamRequests() []autopilot.ParamID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.requests) == 0 {
		return nil
	}
	out := l.requests
	l.requests = nil
	return out
}

// PendingParamRequests returns the queue depth.
func (l *Link) PendingParamRequests() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// DroppedParamRequests returns how many requests were rejected.
func (l *Link) DroppedParamRequests() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
