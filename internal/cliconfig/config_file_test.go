package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileConfig(t *testing.T) {
	content := `
spool_dir = "/data/spool"
out_file = "/data/index.json"
width = 320
height = 270
stride = 648
zerocols = 4
workers = 8
kinetic_sec = 0.02
stop_at_blank = true
strict_encoding = false
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.SpoolDir != "/data/spool" || fc.Width != 320 || fc.Stride != 648 {
		t.Errorf("unexpected file config: %+v", fc)
	}
	if fc.StopAtBlank == nil || !*fc.StopAtBlank {
		t.Error("stop_at_blank not parsed")
	}
}

func TestApplyFileConfig(t *testing.T) {
	enabled := true
	fc := FileConfig{
		SpoolDir:    "/file/spool",
		Width:       320,
		Height:      270,
		StopAtBlank: &enabled,
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.SpoolDir != "/file/spool" || cfg.Width != 320 || cfg.Height != 270 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !cfg.StopAtBlank {
		t.Error("stop_at_blank not applied")
	}
	// Untouched fields keep their defaults.
	if cfg.Stride != 1296 {
		t.Errorf("Stride = %d, want default 1296", cfg.Stride)
	}
}

func TestApplyFileConfigRespectsFlags(t *testing.T) {
	fc := FileConfig{Width: 320}
	cfg := DefaultConfig()
	cfg.Width = 2560 // set by flag

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{"width": true}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.Width != 2560 {
		t.Errorf("Width = %d, flag value should win over file", cfg.Width)
	}
}

func TestLoadFileConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("width = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("malformed TOML should error")
	}
}
