package cliconfig

import (
	"fmt"
	"strconv"

	"github.com/dmc-labs/spooltick/pkg/log"
)

// Config holds the CLI configuration shared by the spooltick subcommands.
// Values are layered: defaults, then config file, then SPOOLTICK_* env
// variables, then flags, with later layers winning.
type Config struct {
	// SpoolDir is the directory of spool files (or a single spool file).
	SpoolDir string

	// OutFile is the index artifact target. Empty writes index.json
	// into the spool directory.
	OutFile string

	// MetaFile is the acquisition metadata path. Empty looks for
	// acquisitionmetadata.ini next to the spool files.
	MetaFile string

	// Width, Height and Stride are the fallback frame dimensions and
	// trailer stride for the legacy metadata generation, which does not
	// declare them. The defaults match the Neo camera's usual AOI.
	Width  int
	Height int
	Stride int

	// ZeroCols is the number of zero-padding columns to strip per row.
	ZeroCols int

	// Workers bounds the parallel tick scan. Zero picks a default.
	Workers int

	// StopAtBlank truncates all-frames decodes at the first blank frame.
	StopAtBlank bool

	// StrictEncoding fails on unrecognized pixel encoding labels instead
	// of best-effort parsing their trailing digits.
	StrictEncoding bool

	// KineticSec is the kinetic cycle time in seconds, enabling
	// elapsed-time estimates when positive.
	KineticSec float64

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:    640,
		Height:   540,
		Stride:   1296,
		ZeroCols: 0,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.SpoolDir == "" {
		return fmt.Errorf("spool path is required")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	if c.Stride <= 0 || c.Stride%8 != 0 {
		return fmt.Errorf("stride must be a positive multiple of 8")
	}
	if c.ZeroCols < 0 {
		return fmt.Errorf("zerocols must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	if c.KineticSec < 0 {
		return fmt.Errorf("kinetic must not be negative")
	}
	return nil
}

// Logger returns the console logger used by the CLI.
func Logger() log.Logger {
	return log.NewZerologAdapter()
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag has not
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if
// valid. Used for environment variables.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination
// if valid. Used for environment variables.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
