package downlink

import (
	"sync/atomic"

	"github.com/banshee-data/qgclink/internal/autopilot"
)

// ModeCache holds the latest operating mode reported by each producer.
// Every field starts at its Unset value and is written only by the mode
// change subscription the Sender owns. Fields are independent atomics, so
// readers never block writers and never see a torn value.
type ModeCache struct {
	servoSource    atomic.Int64
	pilotMode      atomic.Int64
	filterState    atomic.Int64
	controlMode    atomic.Int64
	attitudeSource atomic.Int64
}

// NewModeCache returns a cache with every field unset.
func NewModeCache() *ModeCache {
	c := &ModeCache{}
	c.servoSource.Store(int64(autopilot.ServoSourceUnset))
	c.pilotMode.Store(int64(autopilot.PilotModeUnset))
	c.filterState.Store(int64(autopilot.FilterStateUnset))
	c.controlMode.Store(int64(autopilot.ControlModeUnset))
	c.attitudeSource.Store(int64(autopilot.AttitudeSourceUnset))
	return c
}

func (c *ModeCache) ServoSource() autopilot.ServoSource {
	return autopilot.ServoSource(c.servoSource.Load())
}

func (c *ModeCache) SetServoSource(v autopilot.ServoSource) {
	c.servoSource.Store(int64(v))
}

func (c *ModeCache) PilotMode() autopilot.PilotMode {
	return autopilot.PilotMode(c.pilotMode.Load())
}

func (c *ModeCache) SetPilotMode(v autopilot.PilotMode) {
	c.pilotMode.Store(int64(v))
}

func (c *ModeCache) FilterState() autopilot.FilterState {
	return autopilot.FilterState(c.filterState.Load())
}

func (c *ModeCache) SetFilterState(v autopilot.FilterState) {
	c.filterState.Store(int64(v))
}

func (c *ModeCache) ControlMode() autopilot.ControlMode {
	return autopilot.ControlMode(c.controlMode.Load())
}

func (c *ModeCache) SetControlMode(v autopilot.ControlMode) {
	c.controlMode.Store(int64(v))
}

func (c *ModeCache) AttitudeSource() autopilot.AttitudeSource {
	return autopilot.AttitudeSource(c.attitudeSource.Load())
}

func (c *ModeCache) SetAttitudeSource(v autopilot.AttitudeSource) {
	c.attitudeSource.Store(int64(v))
}

// ModeSnapshot is a copy of every cached field.
type ModeSnapshot struct {
	ServoSource    autopilot.ServoSource    `json:"servo_source"`
	PilotMode      autopilot.PilotMode      `json:"pilot_mode"`
	FilterState    autopilot.FilterState    `json:"filter_state"`
	ControlMode    autopilot.ControlMode    `json:"control_mode"`
	AttitudeSource autopilot.AttitudeSource `json:"attitude_source"`
}

// Snapshot reads every field. Fields are read one at a time; the snapshot
// is not atomic across fields.
func (c *ModeCache) Snapshot() ModeSnapshot {
	return ModeSnapshot{
		ServoSource:    c.ServoSource(),
		PilotMode:      c.PilotMode(),
		FilterState:    c.FilterState(),
		ControlMode:    c.ControlMode(),
		AttitudeSource: c.AttitudeSource(),
	}
}
