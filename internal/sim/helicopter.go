// Package sim provides simulated autopilot producers for running the
// downlink without flight hardware. A Helicopter plays a fixed flight
// script on a loop, emitting mode changes as it goes, and serves smooth
// synthetic readings for the RC, servo and controller streams.
package sim

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/downlink"
	"github.com/banshee-data/qgclink/internal/notify"
	"github.com/banshee-data/qgclink/internal/timeutil"
)

// ScriptPeriod is the length of one pass through the flight script.
const ScriptPeriod = 60 * time.Second

// modeState is the set of modes in force at one point of the script.
type modeState struct {
	servo      autopilot.ServoSource
	pilot      autopilot.PilotMode
	filter     autopilot.FilterState
	control    autopilot.ControlMode
	attitude   autopilot.AttitudeSource
	trajectory autopilot.Trajectory
}

type scriptStep struct {
	at    time.Duration
	modes modeState
}

// script must be sorted by at and start at zero.
var script = []scriptStep{
	{0, modeState{autopilot.ServoDirectManual, autopilot.PilotManual, autopilot.FilterStartup, autopilot.ControlAttitudePID, autopilot.AttitudeAHRS, autopilot.TrajectoryPoint}},
	{2 * time.Second, modeState{autopilot.ServoDirectManual, autopilot.PilotManual, autopilot.FilterInit, autopilot.ControlAttitudePID, autopilot.AttitudeAHRS, autopilot.TrajectoryPoint}},
	{5 * time.Second, modeState{autopilot.ServoScaledManual, autopilot.PilotManual, autopilot.FilterRunning, autopilot.ControlAttitudePID, autopilot.AttitudeNavFilter, autopilot.TrajectoryPoint}},
	{15 * time.Second, modeState{autopilot.ServoAutomaticControl, autopilot.PilotAuto, autopilot.FilterRunning, autopilot.ControlPositionHoldPID, autopilot.AttitudeNavFilter, autopilot.TrajectoryLine}},
	{30 * time.Second, modeState{autopilot.ServoAutomaticControl, autopilot.PilotAuto, autopilot.FilterRunning, autopilot.ControlPositionHoldSBF, autopilot.AttitudeNavFilter, autopilot.TrajectoryCircle}},
	{50 * time.Second, modeState{autopilot.ServoScaledManual, autopilot.PilotManual, autopilot.FilterRunning, autopilot.ControlAttitudePID, autopilot.AttitudeNavFilter, autopilot.TrajectoryPoint}},
}

func modesAt(elapsed time.Duration) modeState {
	t := elapsed % ScriptPeriod
	m := script[0].modes
	for _, s := range script {
		if s.at > t {
			break
		}
		m = s.modes
	}
	return m
}

// Helicopter simulates the controller, servo switch, airframe, RC scaler
// and calibration producers of one aircraft.
type Helicopter struct {
	mu      sync.Mutex
	elapsed time.Duration
	modes   modeState
	started bool

	servo    *notify.Signal[autopilot.ServoSource]
	pilot    *notify.Signal[autopilot.PilotMode]
	filter   *notify.Signal[autopilot.FilterState]
	control  *notify.Signal[autopilot.ControlMode]
	attitude *notify.Signal[autopilot.AttitudeSource]
}

// NewHelicopter returns a helicopter at the start of the script. No mode
// has been announced until the first Advance.
func NewHelicopter() *Helicopter {
	return &Helicopter{
		modes:    script[0].modes,
		servo:    notify.NewSignal[autopilot.ServoSource](),
		pilot:    notify.NewSignal[autopilot.PilotMode](),
		filter:   notify.NewSignal[autopilot.FilterState](),
		control:  notify.NewSignal[autopilot.ControlMode](),
		attitude: notify.NewSignal[autopilot.AttitudeSource](),
	}
}

// Signals returns the mode change notifications for a downlink Sender.
func (h *Helicopter) Signals() downlink.ModeSignals {
	return downlink.ModeSignals{
		ServoSource:    h.servo,
		PilotMode:      h.pilot,
		FilterState:    h.filter,
		ControlMode:    h.control,
		AttitudeSource: h.attitude,
	}
}

// Elapsed returns the simulated flight time.
func (h *Helicopter) Elapsed() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.elapsed
}

// Advance moves the simulation forward by dt and emits a notification for
// every mode that changed. The first call announces every mode.
func (h *Helicopter) Advance(dt time.Duration) {
	h.mu.Lock()
	prev, first := h.modes, !h.started
	h.elapsed += dt
	h.started = true
	h.modes = modesAt(h.elapsed)
	next := h.modes
	h.mu.Unlock()

	if first || next.servo != prev.servo {
		h.servo.Emit(next.servo)
	}
	if first || next.pilot != prev.pilot {
		h.pilot.Emit(next.pilot)
	}
	if first || next.filter != prev.filter {
		h.filter.Emit(next.filter)
	}
	if first || next.control != prev.control {
		h.control.Emit(next.control)
	}
	if first || next.attitude != prev.attitude {
		h.attitude.Emit(next.attitude)
	}
}

// Run advances the simulation by step on every tick of clock until ctx is
// done. A nil clock uses the real clock.
func (h *Helicopter) Run(ctx context.Context, clock timeutil.Clock, step time.Duration) error {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	h.Advance(0)
	for {
		timer := clock.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C():
			h.Advance(step)
		}
	}
}

func (h *Helicopter) snapshot() (time.Duration, modeState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.elapsed, h.modes
}

// ControlMode implements downlink.Controller.
func (h *Helicopter) ControlMode() autopilot.ControlMode {
	_, m := h.snapshot()
	return m.control
}

// TrajectoryType implements downlink.Controller.
func (h *Helicopter) TrajectoryType() autopilot.Trajectory {
	_, m := h.snapshot()
	return m.trajectory
}

// ControlEffort implements downlink.Controller. The four values are the
// collective, roll, pitch and yaw commands.
func (h *Helicopter) ControlEffort() []float64 {
	t, _ := h.snapshot()
	s := t.Seconds()
	return []float64{
		0.5 + 0.1*math.Sin(0.2*s),
		0.2 * math.Sin(0.7*s),
		0.2 * math.Cos(0.5*s),
		0.05 * math.Sin(0.1*s),
	}
}

// PilotMode implements downlink.ServoSwitch.
func (h *Helicopter) PilotMode() autopilot.PilotMode {
	_, m := h.snapshot()
	return m.pilot
}

// RawChannels implements downlink.ServoSwitch with PWM values around
// 1500us.
func (h *Helicopter) RawChannels() []uint16 {
	t, _ := h.snapshot()
	s := t.Seconds()
	raw := make([]uint16, autopilot.NumRawChannels)
	for i := range raw {
		raw[i] = uint16(1500 + 400*math.Sin(0.3*s+float64(i)*math.Pi/4))
	}
	return raw
}

// EngineRPM implements downlink.ServoSwitch.
func (h *Helicopter) EngineRPM() uint16 {
	t, m := h.snapshot()
	if m.filter != autopilot.FilterRunning {
		return 0
	}
	return uint16(9000 + 200*math.Sin(t.Seconds()))
}

// MainRotorRPM implements downlink.ServoSwitch. The main rotor turns at a
// fixed gear ratio from the engine.
func (h *Helicopter) MainRotorRPM() uint16 {
	return uint16(float64(h.EngineRPM()) / gearRatio)
}

const gearRatio = 6.5

// MainCollective implements downlink.Airframe.
func (h *Helicopter) MainCollective() uint16 {
	effort := h.ControlEffort()
	return uint16(1100 + 800*effort[0])
}

// ScaledChannels implements downlink.RCScaler, mapping 1000..2000us to -1..1.
func (h *Helicopter) ScaledChannels() [autopilot.NumScaledChannels]float64 {
	raw := h.RawChannels()
	var out [autopilot.NumScaledChannels]float64
	for i := range out {
		out[i] = (float64(raw[i]) - 1500) / 500
	}
	return out
}

// RadioCalibration implements downlink.CalibrationProvider.
func (h *Helicopter) RadioCalibration() autopilot.RadioCalibration {
	return autopilot.RadioCalibration{
		Aileron:  [3]uint16{1100, 1500, 1900},
		Elevator: [3]uint16{1100, 1500, 1900},
		Rudder:   [3]uint16{1100, 1500, 1900},
		Gyro:     [2]uint16{1200, 1800},
		Pitch:    [5]uint16{1100, 1300, 1500, 1700, 1900},
		Throttle: [5]uint16{1100, 1300, 1500, 1700, 1900},
	}
}

// Altitude returns the simulated height above the launch point in metres.
func (h *Helicopter) Altitude() float64 {
	t, m := h.snapshot()
	if m.pilot != autopilot.PilotAuto {
		return 0
	}
	return 10 + 2*math.Sin(0.1*t.Seconds())
}
