package cliconfig

import (
	"testing"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name: "applies all valid env vars",
			envVars: map[string]string{
				"SPOOLTICK_SPOOL_DIR":   "/env/spool",
				"SPOOLTICK_OUT_FILE":    "/env/index.json",
				"SPOOLTICK_WIDTH":       "320",
				"SPOOLTICK_HEIGHT":      "270",
				"SPOOLTICK_STRIDE":      "648",
				"SPOOLTICK_WORKERS":     "4",
				"SPOOLTICK_KINETIC_SEC": "0.05",
				"SPOOLTICK_STOP_AT_BLANK": "true",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				SpoolDir:    "/env/spool",
				OutFile:     "/env/index.json",
				Width:       320,
				Height:      270,
				Stride:      648,
				Workers:     4,
				KineticSec:  0.05,
				StopAtBlank: true,
			},
		},
		{
			name: "respects changed flags",
			envVars: map[string]string{
				"SPOOLTICK_SPOOL_DIR": "/env/spool",
				"SPOOLTICK_WIDTH":     "320",
			},
			changed: map[string]bool{"path": true, "width": true},
			initial: Config{SpoolDir: "/flag/spool", Width: 2560},
			expected: Config{
				SpoolDir: "/flag/spool",
				Width:    2560,
			},
		},
		{
			name: "returns error for invalid int",
			envVars: map[string]string{
				"SPOOLTICK_WIDTH": "not-a-number",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "returns error for invalid float",
			envVars: map[string]string{
				"SPOOLTICK_KINETIC_SEC": "fast",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "ignores non-positive values",
			envVars: map[string]string{
				"SPOOLTICK_WIDTH": "0",
			},
			changed:  map[string]bool{},
			initial:  Config{Width: 640},
			expected: Config{Width: 640},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := tt.initial
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}
