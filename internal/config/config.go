package config

import (
	"errors"
	"fmt"
	"time"
)

// Config carries construction-time options for hostpulse. There is no
// dynamic reconfiguration; values are fixed for the process lifetime.
type Config struct {
	Interval time.Duration
	LogFile  string
	TopN     int
	JSON     bool
	TUI      bool
	Debug    bool
}

func Default() Config {
	return Config{
		Interval: 2 * time.Second,
		LogFile:  "system_metrics.csv",
		TopN:     5,
	}
}

// Validate rejects values the sampler cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.TopN < 0 {
		return fmt.Errorf("top process count must not be negative, got %d", c.TopN)
	}
	if c.LogFile == "" {
		return errors.New("log file path must not be empty")
	}
	if c.JSON && c.TUI {
		return errors.New("json and tui modes are mutually exclusive")
	}
	return nil
}
