package sim

import (
	"github.com/banshee-data/qgclink/internal/downlink"
	"github.com/banshee-data/qgclink/internal/driver"
	"github.com/banshee-data/qgclink/internal/mavlink"
)

// AltimeterComponent is the component id of the simulated altimeter.
const AltimeterComponent uint8 = 4

// Altimeter is a driver reporting the helicopter's altitude as a named
// value at its own rate.
type Altimeter struct {
	heli *Helicopter
	rate int
}

// NewAltimeter returns an altimeter sampling h at rateHz.
func NewAltimeter(h *Helicopter, rateHz int) *Altimeter {
	return &Altimeter{heli: h, rate: rateHz}
}

func (a *Altimeter) Name() string { return "altimeter" }

// MavlinkMessages implements driver.Driver.
func (a *Altimeter) MavlinkMessages(sysID uint8, baseRate int, iteration uint64) []driver.Message {
	if !downlink.ShouldRun(a.rate, baseRate, iteration) {
		return nil
	}
	return []driver.Message{{
		ComponentID: AltimeterComponent,
		Body: &mavlink.NamedValueFloat{
			TimeBootMs: uint32(a.heli.Elapsed().Milliseconds()),
			Name:       "altitude",
			Value:      float32(a.heli.Altitude()),
		},
	}}
}
