package downlink

import (
	"math"
	"unicode/utf8"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/mavlink"
)

// Wire codes for each internal mode value. Anything missing from a table,
// including the Unset values, is sent as mavlink.Unknown.
var (
	servoSourceCodes = map[autopilot.ServoSource]uint8{
		autopilot.ServoDirectManual:     mavlink.ModeManualDirect,
		autopilot.ServoScaledManual:     mavlink.ModeManualScaled,
		autopilot.ServoAutomaticControl: mavlink.ModeAutomaticControl,
	}
	pilotModeCodes = map[autopilot.PilotMode]uint8{
		autopilot.PilotManual: mavlink.PilotManual,
		autopilot.PilotAuto:   mavlink.PilotAuto,
	}
	filterStateCodes = map[autopilot.FilterState]uint8{
		autopilot.FilterStartup: mavlink.GX3Startup,
		autopilot.FilterInit:    mavlink.GX3Init,
		autopilot.FilterRunning: mavlink.GX3RunningValid,
		autopilot.FilterError:   mavlink.GX3RunningError,
	}
	controlModeCodes = map[autopilot.ControlMode]uint8{
		autopilot.ControlAttitudePID:     mavlink.ControlAttitudePID,
		autopilot.ControlPositionHoldPID: mavlink.ControlTranslationPID,
		autopilot.ControlPositionHoldSBF: mavlink.ControlTranslationSBF,
	}
	attitudeSourceCodes = map[autopilot.AttitudeSource]uint8{
		autopilot.AttitudeNavFilter: mavlink.AttitudeNavFilter,
		autopilot.AttitudeAHRS:      mavlink.AttitudeAHRS,
	}
	trajectoryCodes = map[autopilot.Trajectory]uint8{
		autopilot.TrajectoryPoint:  mavlink.TrajectoryPoint,
		autopilot.TrajectoryLine:   mavlink.TrajectoryLine,
		autopilot.TrajectoryCircle: mavlink.TrajectoryCircle,
	}
)

func wireCode[K comparable](table map[K]uint8, v K) uint8 {
	if code, ok := table[v]; ok {
		return code
	}
	return mavlink.Unknown
}

// statusInputs is everything the status message reports, already resolved
// from the cache or queried from the producers.
type statusInputs struct {
	Modes          ModeSnapshot
	Trajectory     autopilot.Trajectory
	EngineRPM      uint16
	MainRotorRPM   uint16
	MainCollective uint16
}

func encodeHeartbeat() *mavlink.Heartbeat {
	return &mavlink.Heartbeat{
		Type:           mavlink.TypeHelicopter,
		Autopilot:      mavlink.AutopilotUAlberta,
		MavlinkVersion: mavlink.ProtocolVersion,
	}
}

func encodeStatus(in statusInputs) *mavlink.UalbertaSysStatus {
	return &mavlink.UalbertaSysStatus{
		MainCollective: in.MainCollective,
		EngineRPM:      in.EngineRPM,
		RotorRPM:       in.MainRotorRPM,
		ServoSource:    wireCode(servoSourceCodes, in.Modes.ServoSource),
		FilterState:    wireCode(filterStateCodes, in.Modes.FilterState),
		PilotMode:      wireCode(pilotModeCodes, in.Modes.PilotMode),
		ControlMode:    wireCode(controlModeCodes, in.Modes.ControlMode),
		AttitudeSource: wireCode(attitudeSourceCodes, in.Modes.AttitudeSource),
		Trajectory:     wireCode(trajectoryCodes, in.Trajectory),
	}
}

// encodeRCRaw reports up to eight PWM channels; missing channels are zero.
func encodeRCRaw(raw []uint16, timeBootMs uint32) *mavlink.RCChannelsRaw {
	m := &mavlink.RCChannelsRaw{TimeBootMs: timeBootMs}
	copy(m.Channels[:], raw)
	return m
}

// rcScale maps a normalised channel in [-1, 1] to the wire range.
const rcScale = 1e4

// encodeRCScaled reports the six scaled channels in aileron, elevator,
// throttle, rudder, gyro, pitch order.
func encodeRCScaled(scaled [autopilot.NumScaledChannels]float64, timeBootMs uint32) *mavlink.RCChannelsScaled {
	m := &mavlink.RCChannelsScaled{TimeBootMs: timeBootMs}
	for i, v := range scaled {
		m.Channels[i] = clampInt16(v * rcScale)
	}
	return m
}

func clampInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}
	return int16(v)
}

// encodeControlEffort reports the first four controller outputs.
func encodeControlEffort(effort []float64) *mavlink.UalbertaControlEffort {
	m := &mavlink.UalbertaControlEffort{}
	for i := 0; i < len(m.Effort) && i < len(effort); i++ {
		m.Effort[i] = float32(effort[i])
	}
	return m
}

// paramPacket is a parameter value and the component it is sent from.
type paramPacket struct {
	ComponentID uint8
	Msg         *mavlink.ParamValue
}

// encodeParamList numbers every parameter of every source, in source then
// item order, against the total count.
func encodeParamList(sources [][]autopilot.Parameter) []paramPacket {
	total := 0
	for _, ps := range sources {
		total += len(ps)
	}
	out := make([]paramPacket, 0, total)
	for _, ps := range sources {
		for _, p := range ps {
			out = append(out, paramPacket{
				ComponentID: p.ComponentID,
				Msg: &mavlink.ParamValue{
					Value: float32(p.Value),
					Count: uint16(total),
					Index: uint16(len(out)),
					ID:    p.Name,
					Type:  mavlink.ParamTypeReal32,
				},
			})
		}
	}
	return out
}

// encodeParamReply answers a single parameter request: count 1, index -1.
func encodeParamReply(p autopilot.Parameter) paramPacket {
	return paramPacket{
		ComponentID: p.ComponentID,
		Msg: &mavlink.ParamValue{
			Value: float32(p.Value),
			Count: 1,
			Index: mavlink.ParamIndexNone,
			ID:    p.Name,
			Type:  mavlink.ParamTypeReal32,
		},
	}
}

func encodeCalibration(c autopilot.RadioCalibration) *mavlink.RadioCalibration {
	return &mavlink.RadioCalibration{
		Aileron:  c.Aileron,
		Elevator: c.Elevator,
		Rudder:   c.Rudder,
		Gyro:     c.Gyro,
		Pitch:    c.Pitch,
		Throttle: c.Throttle,
	}
}

// encodeConsole truncates the text to the wire field on a rune boundary;
// the codec pads it.
func encodeConsole(m ConsoleMessage) *mavlink.StatusText {
	text := m.Text
	if len(text) > mavlink.StatusTextLen {
		cut := mavlink.StatusTextLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return &mavlink.StatusText{Severity: uint8(m.Severity), Text: text}
}
