package autopilot

// Component ids used on the ground-station link.
const (
	// ComponentConsole is the component id used for console text.
	ComponentConsole uint8 = 0
	// ComponentController owns the controller gains and the control effort stream.
	ComponentController uint8 = 1
	// ComponentHelicopter owns the airframe parameters.
	ComponentHelicopter uint8 = 2
	// ComponentRadioCalibration owns the radio calibration tables.
	ComponentRadioCalibration uint8 = 3
	// ComponentAutopilot is the default component id of the status streams.
	ComponentAutopilot uint8 = 200
)

// ParamIDLen is the fixed width of a parameter name on the wire.
const ParamIDLen = 16

// ParamID identifies a single parameter.
type ParamID struct {
	ComponentID uint8
	Name        string
}

// Parameter is a named float value owned by one component.
type Parameter struct {
	ComponentID uint8
	Name        string
	Value       float64
}

// ID returns the identifier of p.
func (p Parameter) ID() ParamID {
	return ParamID{ComponentID: p.ComponentID, Name: p.Name}
}

// RadioCalibration holds the setpoint tables of each RC channel.
type RadioCalibration struct {
	Aileron  [3]uint16
	Elevator [3]uint16
	Rudder   [3]uint16
	Gyro     [2]uint16
	Pitch    [5]uint16
	Throttle [5]uint16
}

// RC channel indices of the scaled channel array.
const (
	RCAileron = iota
	RCElevator
	RCThrottle
	RCRudder
	RCGyro
	RCPitch

	NumScaledChannels
)

// NumRawChannels is the number of PWM channels reported by the servo switch.
const NumRawChannels = 8
