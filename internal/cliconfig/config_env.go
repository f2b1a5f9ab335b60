package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (SPOOLTICK_*). It respects flags that have been explicitly set.
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("path", os.Getenv("SPOOLTICK_SPOOL_DIR"), &cfg.SpoolDir)
	s.setString("out", os.Getenv("SPOOLTICK_OUT_FILE"), &cfg.OutFile)
	s.setString("meta", os.Getenv("SPOOLTICK_META_FILE"), &cfg.MetaFile)

	if err := s.setIntFromString("width", os.Getenv("SPOOLTICK_WIDTH"), &cfg.Width); err != nil {
		return err
	}
	if err := s.setIntFromString("height", os.Getenv("SPOOLTICK_HEIGHT"), &cfg.Height); err != nil {
		return err
	}
	if err := s.setIntFromString("stride", os.Getenv("SPOOLTICK_STRIDE"), &cfg.Stride); err != nil {
		return err
	}
	if err := s.setIntFromString("zerocols", os.Getenv("SPOOLTICK_ZEROCOLS"), &cfg.ZeroCols); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("SPOOLTICK_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setFloatFromString("kinetic", os.Getenv("SPOOLTICK_KINETIC_SEC"), &cfg.KineticSec); err != nil {
		return err
	}

	s.setBoolFromString("stop-at-blank", os.Getenv("SPOOLTICK_STOP_AT_BLANK"), &cfg.StopAtBlank)
	s.setBoolFromString("strict-encoding", os.Getenv("SPOOLTICK_STRICT_ENCODING"), &cfg.StrictEncoding)

	return nil
}
