package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, "system_metrics.csv", cfg.LogFile)
	assert.Equal(t, 5, cfg.TopN)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Interval = 0 },
			wantErr: "interval",
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Interval = -time.Second },
			wantErr: "interval",
		},
		{
			name:    "negative top count",
			mutate:  func(c *Config) { c.TopN = -1 },
			wantErr: "top process count",
		},
		{
			name:    "empty log path",
			mutate:  func(c *Config) { c.LogFile = "" },
			wantErr: "log file",
		},
		{
			name:    "json and tui together",
			mutate:  func(c *Config) { c.JSON = true; c.TUI = true },
			wantErr: "mutually exclusive",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
