package camera

import (
	"errors"
	"testing"
)

func TestPresetsValidate(t *testing.T) {
	for _, name := range []string{PresetDefault, PresetLow, Preset720p} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Preset(name, 0)
			if err != nil {
				t.Fatalf("Preset: %v", err)
			}
			if errs := cfg.Validate(); len(errs) > 0 {
				t.Errorf("preset %s invalid: %v", name, errs)
			}
			if !cfg.Enabled() {
				t.Error("device 0 should enable capture")
			}
		})
	}

	if _, err := Preset("8k", 0); err == nil {
		t.Error("unknown preset: want error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errs   int
	}{
		{"default", func(*Config) {}, 0},
		{"tiny width", func(c *Config) { c.Width = 10 }, 1},
		{"zero fps", func(c *Config) { c.Framerate = 0 }, 1},
		{"bad quality and height", func(c *Config) { c.Quality = 0; c.Height = 99999 }, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if got := len(cfg.Validate()); got != tt.errs {
				t.Errorf("got %d errors, want %d", got, tt.errs)
			}
		})
	}
}

func TestOpenDisabled(t *testing.T) {
	if _, err := Open(DefaultConfig()); !errors.Is(err, ErrDisabled) {
		t.Errorf("got %v, want ErrDisabled", err)
	}
}
