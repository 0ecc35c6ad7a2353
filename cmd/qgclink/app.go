package main

import (
	"fmt"
	"net/http"

	"github.com/banshee-data/qgclink/internal/autopilot"
	"github.com/banshee-data/qgclink/internal/config"
	"github.com/banshee-data/qgclink/internal/diag"
	"github.com/banshee-data/qgclink/internal/downlink"
	"github.com/banshee-data/qgclink/internal/driver"
	"github.com/banshee-data/qgclink/internal/params"
	"github.com/banshee-data/qgclink/internal/qgclink"
	"github.com/banshee-data/qgclink/internal/sim"
	"github.com/banshee-data/qgclink/internal/transport"
)

// altimeterRateHz is the rate of the simulated altimeter driver.
const altimeterRateHz = 5

// app is the wired downlink process.
type app struct {
	sink    *diag.Sink
	tr      transport.Transport
	store   *params.Store
	link    *qgclink.Link
	drivers *driver.Registry
	sender  *downlink.Sender
	heli    *sim.Helicopter // nil unless running in dev mode
}

func newApp(cfg *config.Config, dev bool, logs diag.LogWriters) (_ *app, err error) {
	a := &app{
		sink:    diag.New(logs),
		drivers: driver.NewRegistry(),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	tr, err := transport.Open(transport.Options{
		Kind:       cfg.GetTransport(),
		UDPAddress: cfg.GetUDPAddress(),
		SerialPort: cfg.GetSerialPort(),
		SerialOptions: transport.PortOptions{
			BaudRate: cfg.GetSerialBaud(),
			DataBits: cfg.GetSerialDataBits(),
			StopBits: cfg.GetSerialStopBits(),
			Parity:   cfg.GetSerialParity(),
		},
		MQTTBroker: cfg.GetMQTTBroker(),
		MQTTTopic:  cfg.GetMQTTTopic(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s transport: %w", cfg.GetTransport(), err)
	}
	a.tr = tr
	if path := cfg.GetCapturePath(); path != "" {
		c, err := transport.NewCaptureFile(path, a.tr)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture: %w", err)
		}
		a.tr = c
	}

	a.store, err = params.Open(cfg.GetParamDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter store: %w", err)
	}
	if err := a.store.Seed(sim.ModuleController, autopilot.ComponentController, sim.ControllerDefaults()); err != nil {
		return nil, err
	}
	if err := a.store.Seed(sim.ModuleHelicopter, autopilot.ComponentHelicopter, sim.HelicopterDefaults()); err != nil {
		return nil, err
	}

	a.link = qgclink.New(qgclink.Options{
		Rates: qgclink.Rates{
			Heartbeat:     cfg.GetHeartbeatRateHz(),
			RCChannels:    cfg.GetRCChannelRateHz(),
			ControlOutput: cfg.GetControlOutputRateHz(),
		},
		RequestCapacity: cfg.GetParamRequestCapacity(),
	}, a.sink)

	dc := downlink.Config{
		SystemID:    cfg.GetUASID(),
		ComponentID: cfg.GetComponentID(),
		BaseRate:    cfg.GetBaseRateHz(),
		Rates:       a.link,
		Requests:    a.link,
		Parameters: []downlink.ParameterSource{
			a.store.Module(sim.ModuleController),
			a.store.Module(sim.ModuleHelicopter),
		},
		Drivers:   a.drivers,
		Transport: a.tr,
		Sink:      a.sink,
		Console:   downlink.NewConsolePipe(cfg.GetConsoleCapacity()),
	}
	if dev {
		a.heli = sim.NewHelicopter()
		dc.Modes = a.heli.Signals()
		dc.Controller = a.heli
		dc.Servos = a.heli
		dc.Airframe = a.heli
		dc.RC = a.heli
		dc.Calibration = a.heli
		a.drivers.Add(sim.NewAltimeter(a.heli, altimeterRateHz))
	}

	a.sender, err = downlink.New(dc)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) adminMux() *http.ServeMux {
	mux := http.NewServeMux()
	a.link.AttachAdminRoutes(mux)
	a.store.AttachAdminRoutes(mux)
	a.sender.AttachAdminRoutes(mux)
	return mux
}

// Close releases the transport and the parameter store.
func (a *app) Close() {
	if a.tr != nil {
		if err := a.tr.Close(); err != nil {
			a.sink.Debugf("failed to close transport: %v", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.sink.Debugf("failed to close parameter store: %v", err)
		}
	}
}
