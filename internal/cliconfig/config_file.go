package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config with TOML-friendly field types.
type FileConfig struct {
	SpoolDir       string  `toml:"spool_dir"`
	OutFile        string  `toml:"out_file"`
	MetaFile       string  `toml:"meta_file"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	Stride         int     `toml:"stride"`
	ZeroCols       int     `toml:"zerocols"`
	Workers        int     `toml:"workers"`
	KineticSec     float64 `toml:"kinetic_sec"`
	StopAtBlank    *bool   `toml:"stop_at_blank"`
	StrictEncoding *bool   `toml:"strict_encoding"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path,
// ~/.spooltick/config.toml, if the home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".spooltick", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config
// struct. It respects flags that have been explicitly set.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("path", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("out", fc.OutFile, &cfg.OutFile)
	s.setString("meta", fc.MetaFile, &cfg.MetaFile)

	s.setInt("width", fc.Width, &cfg.Width)
	s.setInt("height", fc.Height, &cfg.Height)
	s.setInt("stride", fc.Stride, &cfg.Stride)
	s.setInt("zerocols", fc.ZeroCols, &cfg.ZeroCols)
	s.setInt("workers", fc.Workers, &cfg.Workers)

	s.setFloat("kinetic", fc.KineticSec, &cfg.KineticSec)

	s.setBool("stop-at-blank", fc.StopAtBlank, &cfg.StopAtBlank)
	s.setBool("strict-encoding", fc.StrictEncoding, &cfg.StrictEncoding)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
