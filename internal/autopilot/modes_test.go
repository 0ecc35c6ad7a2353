package autopilot

import (
	"fmt"
	"testing"
)

func TestModeStrings(t *testing.T) {
	tests := []struct {
		v    fmt.Stringer
		want string
	}{
		{ServoDirectManual, "direct_manual"},
		{ServoAutomaticControl, "automatic_control"},
		{ServoSourceUnset, "unset"},
		{ServoSource(42), "ServoSource(42)"},
		{PilotAuto, "auto"},
		{PilotModeUnset, "unset"},
		{FilterRunning, "running"},
		{FilterStateUnset, "unset"},
		{ControlPositionHoldSBF, "position_hold_sbf"},
		{ControlModeUnset, "unset"},
		{AttitudeAHRS, "ahrs"},
		{AttitudeSourceUnset, "unset"},
		{TrajectoryCircle, "circle"},
		{TrajectoryUnknown, "unknown"},
		{Trajectory(9), "Trajectory(9)"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParameterID(t *testing.T) {
	p := Parameter{ComponentID: ComponentHelicopter, Name: "MASS", Value: 8.2}
	if got, want := p.ID(), (ParamID{ComponentID: 2, Name: "MASS"}); got != want {
		t.Errorf("ID() = %+v, want %+v", got, want)
	}
}

func TestUnsetSentinelsAreDistinct(t *testing.T) {
	for _, s := range []ServoSource{ServoDirectManual, ServoScaledManual, ServoAutomaticControl} {
		if s == ServoSourceUnset {
			t.Errorf("%v collides with the unset sentinel", s)
		}
	}
	for _, c := range []ControlMode{ControlAttitudePID, ControlPositionHoldPID, ControlPositionHoldSBF} {
		if c == ControlModeUnset {
			t.Errorf("%v collides with the unset sentinel", c)
		}
	}
}
