// Package transport carries encoded MAVLink frames to the ground station.
//
// The downlink hands each complete frame to Send; a transport never splits
// or merges frames. Implementations cover UDP, a serial telemetry radio and
// an MQTT broker, plus a pcap tee and an in-memory mock for tests.
package transport

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport: closed")

// Transport sends encoded frames.
type Transport interface {
	// Send writes one complete frame.
	Send(frame []byte) error
	// Close releases the underlying connection.
	Close() error
}

// Options selects and configures a transport for Open.
type Options struct {
	Kind string // "udp", "serial" or "mqtt"

	UDPAddress string

	SerialPort    string
	SerialOptions PortOptions

	MQTTBroker   string
	MQTTTopic    string
	MQTTClientID string
}

// Open builds the transport described by opts. On error the returned
// Transport is a nil interface, never a nil pointer wrapped in one.
func Open(opts Options) (Transport, error) {
	switch opts.Kind {
	case "udp", "":
		u, err := DialUDP(opts.UDPAddress)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "serial":
		s, err := OpenSerial(opts.SerialPort, opts.SerialOptions)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mqtt":
		m, err := DialMQTT(opts.MQTTBroker, opts.MQTTTopic, opts.MQTTClientID)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", opts.Kind)
	}
}
