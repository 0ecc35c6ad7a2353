package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

// Transport kinds.
const (
	TransportUDP    = "udp"
	TransportSerial = "serial"
	TransportMQTT   = "mqtt"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the downlink configuration. Every field is optional; the Get*
// methods supply defaults for fields omitted from the file, so partial
// configs are safe.
type Config struct {
	// Link identity
	UASID       *int `json:"uas_id,omitempty" yaml:"uas_id,omitempty"`
	ComponentID *int `json:"component_id,omitempty" yaml:"component_id,omitempty"`

	// Loop and stream rates in Hz. A stream rate of 0 disables the stream.
	BaseRateHz          *int `json:"base_rate_hz,omitempty" yaml:"base_rate_hz,omitempty"`
	HeartbeatRateHz     *int `json:"heartbeat_rate_hz,omitempty" yaml:"heartbeat_rate_hz,omitempty"`
	RCChannelRateHz     *int `json:"rc_channel_rate_hz,omitempty" yaml:"rc_channel_rate_hz,omitempty"`
	ControlOutputRateHz *int `json:"control_output_rate_hz,omitempty" yaml:"control_output_rate_hz,omitempty"`

	// Transport selection
	Transport    *string `json:"transport,omitempty" yaml:"transport,omitempty"`
	UDPAddress   *string `json:"udp_address,omitempty" yaml:"udp_address,omitempty"`
	SerialPort   *string `json:"serial_port,omitempty" yaml:"serial_port,omitempty"`
	SerialBaud   *int    `json:"serial_baud_rate,omitempty" yaml:"serial_baud_rate,omitempty"`
	SerialData   *int    `json:"serial_data_bits,omitempty" yaml:"serial_data_bits,omitempty"`
	SerialStop   *int    `json:"serial_stop_bits,omitempty" yaml:"serial_stop_bits,omitempty"`
	SerialParity *string `json:"serial_parity,omitempty" yaml:"serial_parity,omitempty"`
	MQTTBroker   *string `json:"mqtt_broker,omitempty" yaml:"mqtt_broker,omitempty"`
	MQTTTopic    *string `json:"mqtt_topic,omitempty" yaml:"mqtt_topic,omitempty"`
	CapturePath  *string `json:"capture_path,omitempty" yaml:"capture_path,omitempty"`

	// Queues
	ConsoleCapacity      *int `json:"console_capacity,omitempty" yaml:"console_capacity,omitempty"`
	ParamRequestCapacity *int `json:"param_request_capacity,omitempty" yaml:"param_request_capacity,omitempty"`

	// Storage, logging and admin
	ParamDBPath *string `json:"param_db_path,omitempty" yaml:"param_db_path,omitempty"`
	LogFile     *string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	AdminListen *string `json:"admin_listen,omitempty" yaml:"admin_listen,omitempty"`
}

// Helper functions to create pointers
func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }

// Empty returns a Config with all fields set to nil.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a .json, .yaml or .yml file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.UnmarshalStrict(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ext, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	if c.UASID != nil && (*c.UASID < 1 || *c.UASID > 255) {
		return fmt.Errorf("uas_id must be between 1 and 255, got %d", *c.UASID)
	}
	if c.ComponentID != nil && (*c.ComponentID < 0 || *c.ComponentID > 255) {
		return fmt.Errorf("component_id must be between 0 and 255, got %d", *c.ComponentID)
	}
	if c.BaseRateHz != nil && *c.BaseRateHz <= 0 {
		return fmt.Errorf("base_rate_hz must be positive, got %d", *c.BaseRateHz)
	}
	for name, v := range map[string]*int{
		"heartbeat_rate_hz":      c.HeartbeatRateHz,
		"rc_channel_rate_hz":     c.RCChannelRateHz,
		"control_output_rate_hz": c.ControlOutputRateHz,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, *v)
		}
	}
	if c.Transport != nil {
		switch *c.Transport {
		case TransportUDP, TransportSerial, TransportMQTT:
		default:
			return fmt.Errorf("unsupported transport %q: expected udp, serial or mqtt", *c.Transport)
		}
	}
	if c.ConsoleCapacity != nil && *c.ConsoleCapacity <= 0 {
		return fmt.Errorf("console_capacity must be positive, got %d", *c.ConsoleCapacity)
	}
	if c.ParamRequestCapacity != nil && *c.ParamRequestCapacity <= 0 {
		return fmt.Errorf("param_request_capacity must be positive, got %d", *c.ParamRequestCapacity)
	}
	return nil
}

// SlowStreams lists stream rates above the base rate. Such streams never
// fire; callers log them rather than refusing to start.
func (c *Config) SlowStreams() []string {
	base := c.GetBaseRateHz()
	var out []string
	for _, s := range []struct {
		name string
		rate int
	}{
		{"heartbeat_rate_hz", c.GetHeartbeatRateHz()},
		{"rc_channel_rate_hz", c.GetRCChannelRateHz()},
		{"control_output_rate_hz", c.GetControlOutputRateHz()},
	} {
		if s.rate > base {
			out = append(out, fmt.Sprintf("%s=%d exceeds base_rate_hz=%d", s.name, s.rate, base))
		}
	}
	return out
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// GetUASID returns the system id of this vehicle.
func (c *Config) GetUASID() uint8 { return uint8(intOr(c.UASID, 100)) }

// GetComponentID returns the component id of the status streams.
func (c *Config) GetComponentID() uint8 { return uint8(intOr(c.ComponentID, 200)) }

// GetBaseRateHz returns the dispatch loop frequency.
func (c *Config) GetBaseRateHz() int { return intOr(c.BaseRateHz, 200) }

// GetHeartbeatRateHz returns the heartbeat/status stream rate.
func (c *Config) GetHeartbeatRateHz() int { return intOr(c.HeartbeatRateHz, 2) }

// GetRCChannelRateHz returns the RC channel stream rate.
func (c *Config) GetRCChannelRateHz() int { return intOr(c.RCChannelRateHz, 10) }

// GetControlOutputRateHz returns the control effort stream rate.
func (c *Config) GetControlOutputRateHz() int { return intOr(c.ControlOutputRateHz, 10) }

// GetTransport returns the transport kind.
func (c *Config) GetTransport() string { return stringOr(c.Transport, TransportUDP) }

// GetUDPAddress returns the ground station address for the UDP transport.
func (c *Config) GetUDPAddress() string { return stringOr(c.UDPAddress, "127.0.0.1:14550") }

// GetSerialPort returns the serial device of the telemetry radio.
func (c *Config) GetSerialPort() string { return stringOr(c.SerialPort, "/dev/ttyUSB0") }

// GetSerialBaud returns the serial baud rate.
func (c *Config) GetSerialBaud() int { return intOr(c.SerialBaud, 57600) }

// GetSerialDataBits returns the serial data bits.
func (c *Config) GetSerialDataBits() int { return intOr(c.SerialData, 8) }

// GetSerialStopBits returns the serial stop bits.
func (c *Config) GetSerialStopBits() int { return intOr(c.SerialStop, 1) }

// GetSerialParity returns the serial parity letter.
func (c *Config) GetSerialParity() string { return stringOr(c.SerialParity, "N") }

// GetMQTTBroker returns the MQTT broker URL.
func (c *Config) GetMQTTBroker() string { return stringOr(c.MQTTBroker, "tcp://127.0.0.1:1883") }

// GetMQTTTopic returns the topic frames are published on.
func (c *Config) GetMQTTTopic() string { return stringOr(c.MQTTTopic, "qgclink/downlink") }

// GetCapturePath returns the pcap capture path; empty disables capture.
func (c *Config) GetCapturePath() string { return stringOr(c.CapturePath, "") }

// GetConsoleCapacity returns the console mailbox depth.
func (c *Config) GetConsoleCapacity() int { return intOr(c.ConsoleCapacity, 64) }

// GetParamRequestCapacity returns the single-parameter request queue depth.
func (c *Config) GetParamRequestCapacity() int { return intOr(c.ParamRequestCapacity, 256) }

// GetParamDBPath returns the parameter database path.
func (c *Config) GetParamDBPath() string { return stringOr(c.ParamDBPath, "params.db") }

// GetLogFile returns the rotating log file path; empty logs to stderr only.
func (c *Config) GetLogFile() string { return stringOr(c.LogFile, "") }

// GetAdminListen returns the admin HTTP listen address; empty disables it.
func (c *Config) GetAdminListen() string { return stringOr(c.AdminListen, "") }
