package mavlink

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Message ids.
const (
	MsgIDHeartbeat             uint8 = 0
	MsgIDParamValue            uint8 = 22
	MsgIDRCChannelsScaled      uint8 = 34
	MsgIDRCChannelsRaw         uint8 = 35
	MsgIDRadioCalibration      uint8 = 221
	MsgIDUalbertaSysStatus     uint8 = 222
	MsgIDUalbertaControlEffort uint8 = 223
	MsgIDNamedValueFloat       uint8 = 251
	MsgIDStatusText            uint8 = 253
)

// Enumerations used in the messages below.
const (
	TypeHelicopter    uint8 = 4
	AutopilotUAlberta uint8 = 13

	// ProtocolVersion is written into every heartbeat.
	ProtocolVersion uint8 = 3

	ParamTypeReal32 uint8 = 9

	// ParamIndexNone marks a parameter value that is not part of a bulk
	// list transfer (-1 as int16).
	ParamIndexNone uint16 = math.MaxUint16

	StatusTextLen     = 50
	ParamIDLen        = 16
	NamedValueNameLen = 10
	ControlEffortLen  = 4
	RCChannelCount    = 8
)

var le = binary.LittleEndian

func checkLen(name string, b []byte, n int) error {
	if len(b) < n {
		return fmt.Errorf("%w: %s payload is %d bytes, want %d", ErrShortFrame, name, len(b), n)
	}
	return nil
}

// fixedString copies s into a NUL padded field of width n, truncating.
func fixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// cString reads a NUL padded field.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Heartbeat announces the presence and type of the vehicle.
type Heartbeat struct {
	CustomMode     uint32
	Type           uint8
	Autopilot      uint8
	BaseMode       uint8
	SystemStatus   uint8
	MavlinkVersion uint8
}

func (*Heartbeat) MsgID() uint8    { return MsgIDHeartbeat }
func (*Heartbeat) CRCExtra() uint8 { return crcExtra[MsgIDHeartbeat] }

func (m *Heartbeat) MarshalPayload() []byte {
	b := make([]byte, 9)
	le.PutUint32(b[0:], m.CustomMode)
	b[4] = m.Type
	b[5] = m.Autopilot
	b[6] = m.BaseMode
	b[7] = m.SystemStatus
	b[8] = m.MavlinkVersion
	return b
}

func (m *Heartbeat) UnmarshalPayload(b []byte) error {
	if err := checkLen("heartbeat", b, 9); err != nil {
		return err
	}
	m.CustomMode = le.Uint32(b[0:])
	m.Type = b[4]
	m.Autopilot = b[5]
	m.BaseMode = b[6]
	m.SystemStatus = b[7]
	m.MavlinkVersion = b[8]
	return nil
}

// ParamValue carries one parameter, either in a list transfer or as a reply.
type ParamValue struct {
	Value float32
	Count uint16
	Index uint16
	ID    string
	Type  uint8
}

func (*ParamValue) MsgID() uint8    { return MsgIDParamValue }
func (*ParamValue) CRCExtra() uint8 { return crcExtra[MsgIDParamValue] }

func (m *ParamValue) MarshalPayload() []byte {
	b := make([]byte, 25)
	le.PutUint32(b[0:], math.Float32bits(m.Value))
	le.PutUint16(b[4:], m.Count)
	le.PutUint16(b[6:], m.Index)
	fixedString(b[8:8+ParamIDLen], m.ID)
	b[24] = m.Type
	return b
}

func (m *ParamValue) UnmarshalPayload(b []byte) error {
	if err := checkLen("param_value", b, 25); err != nil {
		return err
	}
	m.Value = math.Float32frombits(le.Uint32(b[0:]))
	m.Count = le.Uint16(b[4:])
	m.Index = le.Uint16(b[6:])
	m.ID = cString(b[8 : 8+ParamIDLen])
	m.Type = b[24]
	return nil
}

// RCChannelsScaled carries RC inputs scaled to +-10000.
type RCChannelsScaled struct {
	TimeBootMs uint32
	Channels   [RCChannelCount]int16
	Port       uint8
	RSSI       uint8
}

func (*RCChannelsScaled) MsgID() uint8    { return MsgIDRCChannelsScaled }
func (*RCChannelsScaled) CRCExtra() uint8 { return crcExtra[MsgIDRCChannelsScaled] }

func (m *RCChannelsScaled) MarshalPayload() []byte {
	b := make([]byte, 22)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, c := range m.Channels {
		le.PutUint16(b[4+2*i:], uint16(c))
	}
	b[20] = m.Port
	b[21] = m.RSSI
	return b
}

func (m *RCChannelsScaled) UnmarshalPayload(b []byte) error {
	if err := checkLen("rc_channels_scaled", b, 22); err != nil {
		return err
	}
	m.TimeBootMs = le.Uint32(b[0:])
	for i := range m.Channels {
		m.Channels[i] = int16(le.Uint16(b[4+2*i:]))
	}
	m.Port = b[20]
	m.RSSI = b[21]
	return nil
}

// RCChannelsRaw carries RC inputs as PWM microseconds.
type RCChannelsRaw struct {
	TimeBootMs uint32
	Channels   [RCChannelCount]uint16
	Port       uint8
	RSSI       uint8
}

func (*RCChannelsRaw) MsgID() uint8    { return MsgIDRCChannelsRaw }
func (*RCChannelsRaw) CRCExtra() uint8 { return crcExtra[MsgIDRCChannelsRaw] }

func (m *RCChannelsRaw) MarshalPayload() []byte {
	b := make([]byte, 22)
	le.PutUint32(b[0:], m.TimeBootMs)
	for i, c := range m.Channels {
		le.PutUint16(b[4+2*i:], c)
	}
	b[20] = m.Port
	b[21] = m.RSSI
	return b
}

func (m *RCChannelsRaw) UnmarshalPayload(b []byte) error {
	if err := checkLen("rc_channels_raw", b, 22); err != nil {
		return err
	}
	m.TimeBootMs = le.Uint32(b[0:])
	for i := range m.Channels {
		m.Channels[i] = le.Uint16(b[4+2*i:])
	}
	m.Port = b[20]
	m.RSSI = b[21]
	return nil
}

// StatusText is a console line shown by the ground station.
type StatusText struct {
	Severity uint8
	Text     string
}

func (*StatusText) MsgID() uint8    { return MsgIDStatusText }
func (*StatusText) CRCExtra() uint8 { return crcExtra[MsgIDStatusText] }

func (m *StatusText) MarshalPayload() []byte {
	b := make([]byte, 1+StatusTextLen)
	b[0] = m.Severity
	fixedString(b[1:], m.Text)
	return b
}

func (m *StatusText) UnmarshalPayload(b []byte) error {
	if err := checkLen("statustext", b, 1+StatusTextLen); err != nil {
		return err
	}
	m.Severity = b[0]
	m.Text = cString(b[1 : 1+StatusTextLen])
	return nil
}

// NamedValueFloat is a free-form named value, used by drivers.
type NamedValueFloat struct {
	TimeBootMs uint32
	Value      float32
	Name       string
}

func (*NamedValueFloat) MsgID() uint8    { return MsgIDNamedValueFloat }
func (*NamedValueFloat) CRCExtra() uint8 { return crcExtra[MsgIDNamedValueFloat] }

func (m *NamedValueFloat) MarshalPayload() []byte {
	b := make([]byte, 8+NamedValueNameLen)
	le.PutUint32(b[0:], m.TimeBootMs)
	le.PutUint32(b[4:], math.Float32bits(m.Value))
	fixedString(b[8:], m.Name)
	return b
}

func (m *NamedValueFloat) UnmarshalPayload(b []byte) error {
	if err := checkLen("named_value_float", b, 8+NamedValueNameLen); err != nil {
		return err
	}
	m.TimeBootMs = le.Uint32(b[0:])
	m.Value = math.Float32frombits(le.Uint32(b[4:]))
	m.Name = cString(b[8 : 8+NamedValueNameLen])
	return nil
}
