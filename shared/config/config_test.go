package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantPort  int
		wantLevel string
	}{
		{
			name:      "defaults",
			env:       map[string]string{},
			wantPort:  8080,
			wantLevel: "info",
		},
		{
			name: "from environment",
			env: map[string]string{
				"VAULT_PORT": "9090",
				"LOG_LEVEL":  "debug",
			},
			wantPort:  9090,
			wantLevel: "debug",
		},
		{
			name: "invalid port falls back",
			env: map[string]string{
				"VAULT_PORT": "not-a-port",
			},
			wantPort:  8080,
			wantLevel: "info",
		},
		{
			name: "negative port falls back",
			env: map[string]string{
				"VAULT_PORT": "-1",
			},
			wantPort:  8080,
			wantLevel: "info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("VAULT_PORT")
			os.Unsetenv("LOG_LEVEL")
			for k, v := range tt.env {
				os.Setenv(k, v)
				defer os.Unsetenv(k)
			}

			cfg := Load()

			if cfg.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", cfg.Port, tt.wantPort)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, tt.wantLevel)
			}
			if cfg.SQLite == nil {
				t.Error("SQLite config not populated")
			}
		})
	}
}
