package downlink

import (
	"context"
	"time"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/driver"
	"github.com/banshee-data/qgclink/internal/notify"
)

// Controller is the flight controller.
type Controller interface {
	ControlMode() autopilot.ControlMode
	TrajectoryType() autopilot.Trajectory
	ControlEffort() []float64
}

// ServoSwitch is the servo/RC hardware abstraction.
type ServoSwitch interface {
	PilotMode() autopilot.PilotMode
	RawChannels() []uint16
	EngineRPM() uint16
	MainRotorRPM() uint16
}

// Airframe reports airframe state.
type Airframe interface {
	MainCollective() uint16
}

// RCScaler converts raw RC inputs to normalised channels.
type RCScaler interface {
	ScaledChannels() [autopilot.NumScaledChannels]float64
}

// CalibrationProvider supplies the radio calibration tables.
type CalibrationProvider interface {
	RadioCalibration() autopilot.RadioCalibration
}

// ParameterSource is one parameter-owning module.
type ParameterSource interface {
	Parameters() []autopilot.Parameter
}

// ParameterLookup is implemented by sources that can answer a single
// parameter request without listing the whole module.
type ParameterLookup interface {
	LookupParameter(id autopilot.ParamID) (autopilot.Parameter, bool)
}

// RateSource holds the runtime stream rates in Hz; 0 disables a stream.
// The rates are read fresh every iteration.
type RateSource interface {
	HeartbeatRate() int
	RCChannelRate() int
	ControlOutputRate() int
}

// Requests holds the edge-triggered requests made by the ground station.
type Requests interface {
	// TakeParamListRequest clears the full dump latch and reports whether
	// it was set.
	TakeParamListRequest() bool
	// DrainParamRequests empties the single parameter queue.
	DrainParamRequests() []autopilot.ParamID
	// TakeRCCalibrationRequest clears the calibration latch and reports
	// whether it was set.
	TakeRCCalibrationRequest() bool
}

// DriverSource returns the currently active drivers.
type DriverSource interface {
	Drivers() []driver.Driver
}

// Pacer blocks the loop until the next period. timeutil.RateLimiter is the
// production implementation.
type Pacer interface {
	Wait(ctx context.Context) error
	FinishedCriticalSection() time.Duration
}

// ModeSignals are the mode change notifications the Sender subscribes to.
// A nil source leaves its cache field unset.
type ModeSignals struct {
	ServoSource    notify.Source[autopilot.ServoSource]
	PilotMode      notify.Source[autopilot.PilotMode]
	FilterState    notify.Source[autopilot.FilterState]
	ControlMode    notify.Source[autopilot.ControlMode]
	AttitudeSource notify.Source[autopilot.AttitudeSource]
}
