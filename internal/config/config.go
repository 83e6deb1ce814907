// Package config decodes the host-supplied configuration record that
// selects a receiver, its target baud rate, and the GNSS constellation
// mix the configurator asks the receiver to enable.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SecMajor selects the secondary major constellation the configurator
// enables alongside GPS.
type SecMajor string

const (
	SecMajorGlonass SecMajor = "GLONASS"
	SecMajorBeidou  SecMajor = "BEIDOU"
	SecMajorNone    SecMajor = ""
)

// SBASMode toggles the SBAS tracking channels in the CFG-GNSS mask.
type SBASMode string

const (
	SBASEnabled  SBASMode = "enabled"
	SBASDisabled SBASMode = "disabled"
)

const defaultFakeRoutePath = "fake_route.txt"

// FakeTransportPath is the sentinel tty path that routes to the fake,
// file-replay transport instead of a real serial device.
const FakeTransportPath = "fake"

// Config mirrors the Configuration Inputs table: the handful of values a
// host supplies before the pipeline can open a transport and run the
// configurator against it.
type Config struct {
	// TTYPath is the requested device path, or FakeTransportPath to
	// route to the file-replay transport.
	TTYPath string `yaml:"tty_path"`

	// GNSSBaudRate is the target line rate the configurator negotiates
	// the receiver to after boot.
	GNSSBaudRate int `yaml:"gnss_baudrate"`

	// TTYBaudRate is the baud rate used to open the port before
	// configuration, for receivers that don't support a rate change.
	TTYBaudRate int `yaml:"tty_baudrate"`

	// SecMajor selects the secondary major constellation.
	SecMajor SecMajor `yaml:"secmajor"`

	// SBAS enables or disables SBAS tracking channels.
	SBAS SBASMode `yaml:"sbas"`

	// FakeRoutePath is the input file used by the fake transport.
	FakeRoutePath string `yaml:"fake_route_path"`

	// GPIOResetPin is the sysfs GPIO line toggled to reset an on-board
	// receiver chip before the first Open. A negative value disables the
	// reset sequence (the default for USB-attached receivers).
	GPIOResetPin int `yaml:"gpio_reset_pin"`
}

// Default returns a Config with the same fallbacks the configurator and
// transport apply when a field is left unset.
func Default() Config {
	return Config{
		TTYBaudRate:   9600,
		GNSSBaudRate:  9600,
		SecMajor:      SecMajorNone,
		SBAS:          SBASEnabled,
		FakeRoutePath: defaultFakeRoutePath,
		GPIOResetPin:  -1,
	}
}

// IsFake reports whether TTYPath routes to the file-replay transport.
func (c Config) IsFake() bool {
	return c.TTYPath == FakeTransportPath
}

// Load reads and decodes a YAML configuration file, filling unset fields
// from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses YAML bytes into a Config, filling unset fields from
// Default.
func Decode(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.FakeRoutePath == "" {
		cfg.FakeRoutePath = defaultFakeRoutePath
	}
	return cfg, nil
}
