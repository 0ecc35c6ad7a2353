package downlink

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/qgclink/internal/autopilot"
)

func TestModeCache_StartsUnset(t *testing.T) {
	c := NewModeCache()
	assert.Equal(t, ModeSnapshot{
		ServoSource:    autopilot.ServoSourceUnset,
		PilotMode:      autopilot.PilotModeUnset,
		FilterState:    autopilot.FilterStateUnset,
		ControlMode:    autopilot.ControlModeUnset,
		AttitudeSource: autopilot.AttitudeSourceUnset,
	}, c.Snapshot())
}

func TestModeCache_FieldsAreIndependent(t *testing.T) {
	c := NewModeCache()
	c.SetServoSource(autopilot.ServoAutomaticControl)
	c.SetFilterState(autopilot.FilterRunning)

	assert.Equal(t, autopilot.ServoAutomaticControl, c.ServoSource())
	assert.Equal(t, autopilot.FilterRunning, c.FilterState())
	assert.Equal(t, autopilot.PilotModeUnset, c.PilotMode())
	assert.Equal(t, autopilot.ControlModeUnset, c.ControlMode())
	assert.Equal(t, autopilot.AttitudeSourceUnset, c.AttitudeSource())

	c.SetPilotMode(autopilot.PilotAuto)
	c.SetControlMode(autopilot.ControlPositionHoldSBF)
	c.SetAttitudeSource(autopilot.AttitudeAHRS)
	assert.Equal(t, autopilot.PilotAuto, c.PilotMode())
	assert.Equal(t, autopilot.ControlPositionHoldSBF, c.ControlMode())
	assert.Equal(t, autopilot.AttitudeAHRS, c.AttitudeSource())
}

func TestModeCache_ConcurrentReadersSeeWholeValues(t *testing.T) {
	c := NewModeCache()
	valid := map[autopilot.ControlMode]bool{
		autopilot.ControlModeUnset:       true,
		autopilot.ControlAttitudePID:     true,
		autopilot.ControlPositionHoldPID: true,
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		modes := []autopilot.ControlMode{autopilot.ControlAttitudePID, autopilot.ControlPositionHoldPID}
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				c.SetControlMode(modes[i%2])
			}
		}
	}()
	for i := 0; i < 10000; i++ {
		if v := c.ControlMode(); !valid[v] {
			t.Fatalf("observed invalid value %v", v)
		}
	}
	close(stop)
	wg.Wait()
}
