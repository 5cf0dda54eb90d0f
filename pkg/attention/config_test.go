package attention

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_Thresholds(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.EyeClosedThresh != 0.18 {
		t.Errorf("Expected EyeClosedThresh=0.18, got %v", cfg.EyeClosedThresh)
	}
	if cfg.DrowsyThresh != 0.25 {
		t.Errorf("Expected DrowsyThresh=0.25, got %v", cfg.DrowsyThresh)
	}
	// Two-tier sensitivity: the streak counts on a broader condition.
	if cfg.DrowsyThresh <= cfg.EyeClosedThresh {
		t.Errorf("DrowsyThresh (%v) should be looser than EyeClosedThresh (%v)",
			cfg.DrowsyThresh, cfg.EyeClosedThresh)
	}
	if cfg.DrowsyFrames != 10 {
		t.Errorf("Expected DrowsyFrames=10, got %v", cfg.DrowsyFrames)
	}
	if cfg.AlertCooldown != 3*time.Second || cfg.AlertClearAfter != 2*time.Second {
		t.Errorf("alert timing = %v/%v, want 3s/2s", cfg.AlertCooldown, cfg.AlertClearAfter)
	}
}

func TestConfigPresets_Valid(t *testing.T) {
	configs := []struct {
		name string
		cfg  Config
	}{
		{"Default", DefaultConfig()},
		{"Lenient", LenientConfig()},
		{"Strict", StrictConfig()},
	}

	for _, tc := range configs {
		if err := tc.cfg.Validate(); err != nil {
			t.Errorf("%s: %v", tc.name, err)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero frames", func(c *Config) { c.DrowsyFrames = 0 }},
		{"negative closed thresh", func(c *Config) { c.EyeClosedThresh = -1 }},
		{"zero drowsy thresh", func(c *Config) { c.DrowsyThresh = 0 }},
		{"center above one", func(c *Config) { c.CenterThreshold = 1.5 }},
		{"negative cooldown", func(c *Config) { c.AlertCooldown = -time.Second }},
		{"alarm before warn", func(c *Config) { c.AlarmAfter = c.WarnAfter - time.Second }},
		{"model too small", func(c *Config) { c.Model.Points = 100 }},
		{"negative model index", func(c *Config) { c.Model.LeftIris[2] = -1 }},
		{"clear outlasts cooldown", func(c *Config) { c.AlertClearAfter = c.AlertCooldown + time.Millisecond }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}
