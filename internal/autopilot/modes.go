// Package autopilot defines the flight-control state shared between the
// autopilot producers and the ground-station downlink: operating modes,
// tunable parameters and radio calibration tables.
package autopilot

import "fmt"

// ServoSource selects which path drives the servos.
type ServoSource int

const (
	ServoDirectManual ServoSource = iota
	ServoScaledManual
	ServoAutomaticControl

	// ServoSourceUnset is held until the first mode notification arrives.
	ServoSourceUnset
)

func (s ServoSource) String() string {
	switch s {
	case ServoDirectManual:
		return "direct_manual"
	case ServoScaledManual:
		return "scaled_manual"
	case ServoAutomaticControl:
		return "automatic_control"
	case ServoSourceUnset:
		return "unset"
	}
	return fmt.Sprintf("ServoSource(%d)", int(s))
}

// PilotMode is the position of the pilot's manual/auto switch.
type PilotMode int

const (
	PilotManual PilotMode = iota
	PilotAuto

	PilotModeUnset
)

func (p PilotMode) String() string {
	switch p {
	case PilotManual:
		return "manual"
	case PilotAuto:
		return "auto"
	case PilotModeUnset:
		return "unset"
	}
	return fmt.Sprintf("PilotMode(%d)", int(p))
}

// FilterState is the state of the inertial navigation filter (GX3).
type FilterState int

const (
	FilterStartup FilterState = iota
	FilterInit
	FilterRunning
	FilterError

	FilterStateUnset
)

func (f FilterState) String() string {
	switch f {
	case FilterStartup:
		return "startup"
	case FilterInit:
		return "init"
	case FilterRunning:
		return "running"
	case FilterError:
		return "error"
	case FilterStateUnset:
		return "unset"
	}
	return fmt.Sprintf("FilterState(%d)", int(f))
}

// ControlMode is the active controller.
type ControlMode int

const (
	ControlAttitudePID ControlMode = iota
	ControlPositionHoldPID
	ControlPositionHoldSBF

	ControlModeUnset
)

func (c ControlMode) String() string {
	switch c {
	case ControlAttitudePID:
		return "attitude_pid"
	case ControlPositionHoldPID:
		return "position_hold_pid"
	case ControlPositionHoldSBF:
		return "position_hold_sbf"
	case ControlModeUnset:
		return "unset"
	}
	return fmt.Sprintf("ControlMode(%d)", int(c))
}

// AttitudeSource tells which estimator feeds the attitude controller.
type AttitudeSource int

const (
	AttitudeNavFilter AttitudeSource = iota
	AttitudeAHRS

	AttitudeSourceUnset
)

func (a AttitudeSource) String() string {
	switch a {
	case AttitudeNavFilter:
		return "nav_filter"
	case AttitudeAHRS:
		return "ahrs"
	case AttitudeSourceUnset:
		return "unset"
	}
	return fmt.Sprintf("AttitudeSource(%d)", int(a))
}

// Trajectory is the reference trajectory type followed in position hold.
// It is queried from the controller each time and is never cached.
type Trajectory int

const (
	TrajectoryPoint Trajectory = iota
	TrajectoryLine
	TrajectoryCircle

	// TrajectoryUnknown is reported when no controller is available.
	TrajectoryUnknown Trajectory = -1
)

func (t Trajectory) String() string {
	switch t {
	case TrajectoryPoint:
		return "point"
	case TrajectoryLine:
		return "line"
	case TrajectoryCircle:
		return "circle"
	case TrajectoryUnknown:
		return "unknown"
	}
	return fmt.Sprintf("Trajectory(%d)", int(t))
}
