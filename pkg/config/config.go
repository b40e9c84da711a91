// Package config loads the YAML configuration of the spectro tools.
//
// A minimal file names nothing and probes USB:
//
//	log:
//	  level: info
//
// A fuller one adds mDNS discovery, per-transport timeouts and devices at
// fixed locations:
//
//	log:
//	  level: debug
//	  capture: /var/log/spectro/session.splog
//	timeouts:
//	  usb: 1s
//	  rs232: 3s
//	discovery:
//	  mdns: true
//	  interface: eth0
//	  browse_timeout: 2s
//	devices:
//	  - type: USB2000PLUS
//	    serial: {path: /dev/ttyUSB0, baud: 9600}
//	  - type: OCEAN-FX
//	    tcp: {host: 10.0.0.5, port: 57357}
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lumen-instruments/spectro-go/pkg/bus"
)

// Config is the root of a configuration file.
type Config struct {
	Log       Log       `yaml:"log"`
	Timeouts  Timeouts  `yaml:"timeouts"`
	Discovery Discovery `yaml:"discovery"`
	Devices   []Device  `yaml:"devices"`
	Acquire   Acquire   `yaml:"acquire"`
	Metrics   Metrics   `yaml:"metrics"`
}

// Log selects operational and capture logging.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Capture is a protocol capture file path. Empty disables capture.
	Capture string `yaml:"capture"`
}

// Timeouts bounds transfers per transport. Zero keeps bus.DefaultTimeout.
type Timeouts struct {
	USB   time.Duration `yaml:"usb"`
	RS232 time.Duration `yaml:"rs232"`
	TCP   time.Duration `yaml:"tcp"`
}

// Discovery selects which transports are probed.
type Discovery struct {
	USB           bool          `yaml:"usb"`
	MDNS          bool          `yaml:"mdns"`
	Interface     string        `yaml:"interface"`
	BrowseTimeout time.Duration `yaml:"browse_timeout"`

	// Types restricts probing to these device types. Empty probes all.
	Types []string `yaml:"types"`
}

// Device is an instrument at a fixed location. Exactly one of Serial and
// TCP is set.
type Device struct {
	Type   string  `yaml:"type"`
	Serial *Serial `yaml:"serial"`
	TCP    *TCP    `yaml:"tcp"`
}

// Serial is an RS-232 location.
type Serial struct {
	Path string `yaml:"path"`
	Baud int    `yaml:"baud"`
}

// TCP is a network location.
type TCP struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Acquire tunes buffered acquisition.
type Acquire struct {
	// Batch is the number of records requested per Begin.
	Batch int `yaml:"batch"`

	// MaxWait bounds the total time spent retrying one retrieve.
	MaxWait time.Duration `yaml:"max_wait"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	// Listen is the address of the /metrics endpoint. Empty disables it.
	Listen string `yaml:"listen"`
}

// Config errors.
var (
	ErrInvalidLevel    = errors.New("invalid log level")
	ErrInvalidDevice   = errors.New("invalid device entry")
	ErrInvalidDuration = errors.New("negative duration")
	ErrInvalidAcquire  = errors.New("invalid acquire settings")
)

// LoadError describes a failure to load a configuration file.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:       Log{Level: "info"},
		Discovery: Discovery{USB: true, MDNS: false, BrowseTimeout: bus.DefaultBrowseTimeout},
		Acquire:   Acquire{Batch: 100, MaxWait: 5 * time.Second},
	}
}

// Parse decodes YAML over Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &LoadError{Message: "invalid configuration", Cause: err}
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return Config{}, err
	}
	return cfg, nil
}

var levels = []string{"debug", "info", "warn", "error"}

// Validate checks every field.
func (c Config) Validate() error {
	if !slices.Contains(levels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	for name, d := range map[string]time.Duration{
		"timeouts.usb":             c.Timeouts.USB,
		"timeouts.rs232":           c.Timeouts.RS232,
		"timeouts.tcp":             c.Timeouts.TCP,
		"discovery.browse_timeout": c.Discovery.BrowseTimeout,
		"acquire.max_wait":         c.Acquire.MaxWait,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s = %s", ErrInvalidDuration, name, d)
		}
	}
	if c.Acquire.Batch < 1 {
		return fmt.Errorf("%w: batch %d", ErrInvalidAcquire, c.Acquire.Batch)
	}
	for i, d := range c.Devices {
		if _, err := d.Locator(); err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
	}
	return nil
}

// Locator returns the validated locator of the entry.
func (d Device) Locator() (bus.Locator, error) {
	if d.Type == "" {
		return nil, fmt.Errorf("%w: type is empty", ErrInvalidDevice)
	}
	switch {
	case d.Serial != nil && d.TCP != nil:
		return nil, fmt.Errorf("%w: %s has both serial and tcp", ErrInvalidDevice, d.Type)
	case d.Serial != nil:
		return bus.NewSerialLocator(d.Serial.Path, d.Serial.Baud)
	case d.TCP != nil:
		return bus.NewTCPLocator(d.TCP.Host, d.TCP.Port)
	default:
		return nil, fmt.Errorf("%w: %s has no location", ErrInvalidDevice, d.Type)
	}
}

// SlogLevel returns the configured level.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ByKind returns the non-zero timeouts keyed by bus kind.
func (t Timeouts) ByKind() map[bus.Kind]time.Duration {
	out := make(map[bus.Kind]time.Duration, 3)
	for k, d := range map[bus.Kind]time.Duration{bus.KindUSB: t.USB, bus.KindRS232: t.RS232, bus.KindTCP: t.TCP} {
		if d > 0 {
			out[k] = d
		}
	}
	return out
}
