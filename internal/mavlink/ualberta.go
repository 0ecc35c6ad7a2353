package mavlink

import "math"

// Wire codes of the UAlberta dialect. Unknown is sent for any internal value
// that has no defined counterpart.
const (
	Unknown uint8 = 255

	ModeManualDirect      uint8 = 1
	ModeManualScaled      uint8 = 2
	ModeAutomaticControl  uint8 = 3
	PilotManual           uint8 = 1
	PilotAuto             uint8 = 2
	GX3Startup            uint8 = 1
	GX3Init               uint8 = 2
	GX3RunningValid       uint8 = 3
	GX3RunningError       uint8 = 4
	ControlAttitudePID    uint8 = 1
	ControlTranslationPID uint8 = 2
	ControlTranslationSBF uint8 = 3
	AttitudeNavFilter     uint8 = 1
	AttitudeAHRS          uint8 = 2
	TrajectoryPoint       uint8 = 1
	TrajectoryLine        uint8 = 2
	TrajectoryCircle      uint8 = 3
)

// UalbertaSysStatus summarises the autopilot operating state.
type UalbertaSysStatus struct {
	MainCollective uint16 // collective pitch, PWM microseconds
	EngineRPM      uint16
	RotorRPM       uint16
	Voltage        uint16
	CPULoad        uint16
	ServoSource    uint8
	FilterState    uint8
	PilotMode      uint8
	ControlMode    uint8
	AttitudeSource uint8
	Trajectory     uint8
}

func (*UalbertaSysStatus) MsgID() uint8    { return MsgIDUalbertaSysStatus }
func (*UalbertaSysStatus) CRCExtra() uint8 { return crcExtra[MsgIDUalbertaSysStatus] }

func (m *UalbertaSysStatus) MarshalPayload() []byte {
	b := make([]byte, 16)
	le.PutUint16(b[0:], m.MainCollective)
	le.PutUint16(b[2:], m.EngineRPM)
	le.PutUint16(b[4:], m.RotorRPM)
	le.PutUint16(b[6:], m.Voltage)
	le.PutUint16(b[8:], m.CPULoad)
	b[10] = m.ServoSource
	b[11] = m.FilterState
	b[12] = m.PilotMode
	b[13] = m.ControlMode
	b[14] = m.AttitudeSource
	b[15] = m.Trajectory
	return b
}

func (m *UalbertaSysStatus) UnmarshalPayload(b []byte) error {
	if err := checkLen("ualberta_sys_status", b, 16); err != nil {
		return err
	}
	m.MainCollective = le.Uint16(b[0:])
	m.EngineRPM = le.Uint16(b[2:])
	m.RotorRPM = le.Uint16(b[4:])
	m.Voltage = le.Uint16(b[6:])
	m.CPULoad = le.Uint16(b[8:])
	m.ServoSource = b[10]
	m.FilterState = b[11]
	m.PilotMode = b[12]
	m.ControlMode = b[13]
	m.AttitudeSource = b[14]
	m.Trajectory = b[15]
	return nil
}

// RadioCalibration carries the RC setpoint tables.
type RadioCalibration struct {
	Aileron  [3]uint16
	Elevator [3]uint16
	Rudder   [3]uint16
	Gyro     [2]uint16
	Pitch    [5]uint16
	Throttle [5]uint16
}

func (*RadioCalibration) MsgID() uint8    { return MsgIDRadioCalibration }
func (*RadioCalibration) CRCExtra() uint8 { return crcExtra[MsgIDRadioCalibration] }

func (m *RadioCalibration) tables() [][]uint16 {
	return [][]uint16{m.Aileron[:], m.Elevator[:], m.Rudder[:], m.Gyro[:], m.Pitch[:], m.Throttle[:]}
}

func (m *RadioCalibration) MarshalPayload() []byte {
	b := make([]byte, 0, 42)
	for _, table := range m.tables() {
		for _, v := range table {
			b = le.AppendUint16(b, v)
		}
	}
	return b
}

func (m *RadioCalibration) UnmarshalPayload(b []byte) error {
	if err := checkLen("radio_calibration", b, 42); err != nil {
		return err
	}
	off := 0
	for _, table := range m.tables() {
		for i := range table {
			table[i] = le.Uint16(b[off:])
			off += 2
		}
	}
	return nil
}

// UalbertaControlEffort carries the controller outputs.
type UalbertaControlEffort struct {
	Effort [ControlEffortLen]float32
}

func (*UalbertaControlEffort) MsgID() uint8    { return MsgIDUalbertaControlEffort }
func (*UalbertaControlEffort) CRCExtra() uint8 { return crcExtra[MsgIDUalbertaControlEffort] }

func (m *UalbertaControlEffort) MarshalPayload() []byte {
	b := make([]byte, 4*ControlEffortLen)
	for i, v := range m.Effort {
		le.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return b
}

func (m *UalbertaControlEffort) UnmarshalPayload(b []byte) error {
	if err := checkLen("ualberta_control_effort", b, 4*ControlEffortLen); err != nil {
		return err
	}
	for i := range m.Effort {
		m.Effort[i] = math.Float32frombits(le.Uint32(b[4*i:]))
	}
	return nil
}
