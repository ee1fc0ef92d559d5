// Package config loads the vinc configuration file.
//
// The file is YAML. Every field is optional; missing fields keep the values
// from Default. Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/logger"
	"github.com/arloliu/go-vinculum/vinculum"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted by Load.
const EnvConfigPath = "VINC_CONFIG"

// BusKind selects the bus adapter.
type BusKind string

const (
	// BusSerial is a VDIP1 in UART mode.
	BusSerial BusKind = "serial"
	// BusPort is the parallel FIFO reached through I/O ports.
	BusPort BusKind = "port"
	// BusSim is the in-memory simulated monitor.
	BusSim BusKind = "sim"
)

// ClockKind selects the timeout clock backend.
type ClockKind string

const (
	// ClockTicks uses the 2 ms tick counter.
	ClockTicks ClockKind = "ticks"
	// ClockSeconds uses a once-per-second counter.
	ClockSeconds ClockKind = "seconds"
)

// Config is the vinc configuration.
type Config struct {
	// Bus configures the bus adapter.
	Bus BusConfig `yaml:"bus"`

	// Clock is "ticks" or "seconds".
	Clock ClockKind `yaml:"clock"`

	// Timeout is the per-operation timeout in seconds.
	Timeout int `yaml:"timeout"`

	// ChunkSize is the transfer size of get and put.
	ChunkSize int `yaml:"chunk_size"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// BusConfig configures the bus adapter.
type BusConfig struct {
	Kind BusKind `yaml:"kind"`

	// Serial is the serial device, e.g. /dev/ttyUSB0. Used by kind serial.
	Serial string `yaml:"serial"`
	// Baud is the serial line speed.
	Baud int `yaml:"baud"`
	// FlowControl follows CTS for transmit-ready.
	FlowControl bool `yaml:"flow_control"`

	// DataPort and StatusPort are I/O port addresses. Used by kind port.
	DataPort   uint16 `yaml:"data_port"`
	StatusPort uint16 `yaml:"status_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Kind:        BusSerial,
			Serial:      "/dev/ttyUSB0",
			Baud:        bus.DefaultBaudRate,
			FlowControl: true,
		},
		Clock:     ClockTicks,
		Timeout:   vinculum.DefaultTimeout,
		ChunkSize: vinculum.DefaultChunkSize,
		LogLevel:  "info",
	}
}

// Load reads the file named by VINC_CONFIG, or returns Default when the
// variable is not set.
func Load() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}

	return LoadFile(path)
}

// LoadFile reads path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var errs []error

	switch c.Bus.Kind {
	case BusSerial:
		if c.Bus.Serial == "" {
			errs = append(errs, errors.New("bus.serial is required for a serial bus"))
		}
		if c.Bus.Baud <= 0 {
			errs = append(errs, fmt.Errorf("bus.baud must be positive, got %d", c.Bus.Baud))
		}
	case BusPort:
		if c.Bus.DataPort == c.Bus.StatusPort {
			errs = append(errs, fmt.Errorf("bus.data_port and bus.status_port must differ, both %#x", c.Bus.DataPort))
		}
	case BusSim:
	default:
		errs = append(errs, fmt.Errorf("bus.kind must be one of serial, port, sim; got %q", c.Bus.Kind))
	}

	if c.Clock != ClockTicks && c.Clock != ClockSeconds {
		errs = append(errs, fmt.Errorf("clock must be ticks or seconds; got %q", c.Clock))
	}

	if c.Timeout < vinculum.MinTimeout || c.Timeout > vinculum.MaxTimeout {
		errs = append(errs, fmt.Errorf("timeout must be in [%d, %d], got %d", vinculum.MinTimeout, vinculum.MaxTimeout, c.Timeout))
	}

	if c.ChunkSize < 1 || c.ChunkSize > vinculum.MaxChunkSize {
		errs = append(errs, fmt.Errorf("chunk_size must be in [1, %d], got %d", vinculum.MaxChunkSize, c.ChunkSize))
	}

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}

	return nil
}

// NewClock returns the clock backend selected by Clock.
func (c *Config) NewClock() clock.Clock {
	if c.Clock == ClockSeconds {
		return clock.NewSecondsClock(clock.SystemSeconds())
	}

	return clock.NewTickClock(clock.SystemTicks())
}

// SessionOptions converts the session-related fields. The config must be
// valid.
func (c *Config) SessionOptions(l logger.Logger) []vinculum.SessionOption {
	return []vinculum.SessionOption{
		vinculum.WithClock(c.NewClock()),
		vinculum.WithTimeout(c.Timeout),
		vinculum.WithChunkSize(c.ChunkSize),
		vinculum.WithLogger(l),
	}
}
